package permissions

import (
	"fmt"
	"os"
	"strings"
)

// ParseFlags parses command-line arguments into a FlagsConfig and the
// remaining non-permission arguments. Supported flags:
//
//	--allow-all or -A            grant everything
//	--allow-read[=paths]         grant read (comma-separated paths, empty = all)
//	--allow-write[=paths]        grant write
//	--allow-net[=hosts]          grant net (comma-separated host[:port] literals)
//	--allow-env                  grant environment variable access
//	--allow-run                  grant subprocess execution
//	--allow-plugin               grant native plugin loading
//	--allow-hrtime               grant high-resolution timers
//	--prompt / --no-prompt       force interactive prompting on or off
func ParseFlags(args []string) (FlagsConfig, []string, error) {
	var cfg FlagsConfig
	var remaining []string
	allowAll := false
	var forcePrompt *bool

	for _, arg := range args {
		switch {
		case arg == "--allow-all" || arg == "-A":
			allowAll = true
		case strings.HasPrefix(arg, "--allow-read"):
			paths, err := parsePermissionValue(arg, "--allow-read")
			if err != nil {
				return FlagsConfig{}, nil, err
			}
			cfg.AllowRead = len(paths) == 0
			cfg.ReadAllowlist = append(cfg.ReadAllowlist, paths...)
		case strings.HasPrefix(arg, "--allow-write"):
			paths, err := parsePermissionValue(arg, "--allow-write")
			if err != nil {
				return FlagsConfig{}, nil, err
			}
			cfg.AllowWrite = len(paths) == 0
			cfg.WriteAllowlist = append(cfg.WriteAllowlist, paths...)
		case strings.HasPrefix(arg, "--allow-net"):
			hosts, err := parsePermissionValue(arg, "--allow-net")
			if err != nil {
				return FlagsConfig{}, nil, err
			}
			cfg.AllowNet = len(hosts) == 0
			cfg.NetAllowlist = append(cfg.NetAllowlist, hosts...)
		case arg == "--allow-env":
			cfg.AllowEnv = true
		case arg == "--allow-run":
			cfg.AllowRun = true
		case arg == "--allow-plugin":
			cfg.AllowPlugin = true
		case arg == "--allow-hrtime":
			cfg.AllowHrtime = true
		case arg == "--prompt":
			t := true
			forcePrompt = &t
		case arg == "--no-prompt":
			f := false
			forcePrompt = &f
		default:
			remaining = append(remaining, arg)
		}
	}

	if allowAll {
		fmt.Fprintln(os.Stderr, "⚠️  WARNING: --allow-all grants full system access")
		fmt.Fprintln(os.Stderr, "   Prefer specific flags: --allow-read, --allow-write, --allow-net, ...")
		cfg.AllowRead = true
		cfg.AllowWrite = true
		cfg.AllowNet = true
		cfg.AllowEnv = true
		cfg.AllowRun = true
		cfg.AllowPlugin = true
		cfg.AllowHrtime = true
		cfg.ReadAllowlist = nil
		cfg.WriteAllowlist = nil
		cfg.NetAllowlist = nil
	}

	cfg.forcePrompt = forcePrompt
	return cfg, remaining, nil
}

// parsePermissionValue extracts values from a permission flag. A bare flag
// (no "=") means "allow everything of this class" and returns an empty
// slice; "--flag=" with nothing after the "=" is an error; otherwise the
// value is split on commas and each piece trimmed.
func parsePermissionValue(arg, flagName string) ([]string, error) {
	if !strings.Contains(arg, "=") {
		return nil, nil
	}

	parts := strings.SplitN(arg, "=", 2)
	if parts[1] == "" {
		return nil, &Error{Kind: InvalidArgument, Message: fmt.Sprintf("%s requires a value or omit '=' to allow all", flagName)}
	}

	values := strings.Split(parts[1], ",")
	for i, v := range values {
		values[i] = strings.TrimSpace(v)
	}
	return values, nil
}
