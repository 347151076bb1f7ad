package permissions

import (
	"bytes"
	"encoding/json"
	"sync"
)

// Path is the key type for the read/write resource families: an absolute,
// cwd-resolved, lexically-clean filesystem path.
type Path string

// NetKey is the key type for the net resource family: a bare host, a
// "host:port" literal, or (for interactively-granted entries) the original
// URL string the operator was shown.
type NetKey string

// Permissions is the full capability set for one execution context: seven
// resource classes — read, write, net (each a UnaryPermission) and env,
// run, plugin, hrtime (each a bare State).
//
// A Permissions value is constructed once and shared by reference with
// every guest operation. Query/Check methods take a read lock and are safe
// to call concurrently; Request/Revoke methods take a write lock and are
// therefore mutually exclusive with every other verb call.
type Permissions struct {
	mu sync.RWMutex

	read   UnaryPermission[Path]
	write  UnaryPermission[Path]
	net    UnaryPermission[NetKey]
	env    State
	run    State
	plugin State
	hrtime State

	prompter Prompter
}

// globalPermissions is the process-wide Permissions instance the runtime
// wires every guest-visible module through, mirroring how a single
// capability set governs one script execution.
var globalPermissions *Permissions

// SetGlobal installs p as the process-wide Permissions instance.
func SetGlobal(p *Permissions) {
	globalPermissions = p
}

// GetGlobal returns the process-wide Permissions instance, lazily creating
// a default (everything Prompt) one if SetGlobal was never called.
func GetGlobal() *Permissions {
	if globalPermissions == nil {
		globalPermissions = New()
	}
	return globalPermissions
}

// New returns a Permissions value with every field at its default (Prompt,
// empty lists) and a TTY-gated stdio prompter.
func New() *Permissions {
	return &Permissions{
		read:     newUnaryPermission[Path](Prompt),
		write:    newUnaryPermission[Path](Prompt),
		net:      newUnaryPermission[NetKey](Prompt),
		env:      Prompt,
		run:      Prompt,
		plugin:   Prompt,
		hrtime:   Prompt,
		prompter: NewStdioPrompter(),
	}
}

// AllowAll returns a Permissions value with every field granted
// unconditionally — the --allow-all / allow_all factory from §3.
func AllowAll() *Permissions {
	p := New()
	p.read.GlobalState = Granted
	p.write.GlobalState = Granted
	p.net.GlobalState = Granted
	p.env = Granted
	p.run = Granted
	p.plugin = Granted
	p.hrtime = Granted
	return p
}

// SetPrompter replaces the interactive prompter, e.g. with a deterministic
// stub for tests.
func (p *Permissions) SetPrompter(prompter Prompter) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.prompter = prompter
}

// FlagsConfig is the parsed-flags shape §6 says construction reads from:
// seven boolean "allow everything of this class" switches, plus the three
// allowlists that narrow read/write/net to specific resources.
type FlagsConfig struct {
	AllowRead   bool
	AllowWrite  bool
	AllowNet    bool
	AllowEnv    bool
	AllowRun    bool
	AllowPlugin bool
	AllowHrtime bool

	ReadAllowlist  []string
	WriteAllowlist []string
	NetAllowlist   []string

	// forcePrompt overrides TTY autodetection when set by --prompt/--no-prompt.
	forcePrompt *bool
}

// FromFlags constructs a Permissions value from parsed CLI flags: booleans
// become the initial global_state via StateFromBool, and the three
// allowlists populate the corresponding granted_list. Deny-lists always
// start empty. Paths in the allowlists are resolved through cwd-resolution;
// a path that cannot be resolved is an InvalidArgument error.
func FromFlags(cfg FlagsConfig) (*Permissions, error) {
	read := newUnaryPermission[Path](StateFromBool(cfg.AllowRead))
	for _, raw := range cfg.ReadAllowlist {
		resolved, err := resolveFromCWD(raw)
		if err != nil {
			return nil, err
		}
		read.GrantedList[Path(resolved)] = struct{}{}
	}

	write := newUnaryPermission[Path](StateFromBool(cfg.AllowWrite))
	for _, raw := range cfg.WriteAllowlist {
		resolved, err := resolveFromCWD(raw)
		if err != nil {
			return nil, err
		}
		write.GrantedList[Path(resolved)] = struct{}{}
	}

	net := newUnaryPermission[NetKey](StateFromBool(cfg.AllowNet))
	for _, raw := range cfg.NetAllowlist {
		net.GrantedList[NetKey(raw)] = struct{}{}
	}

	prompter := NewStdioPrompter()
	if cfg.forcePrompt != nil {
		prompter.SetInteractive(*cfg.forcePrompt)
	}

	return &Permissions{
		read:     read,
		write:    write,
		net:      net,
		env:      StateFromBool(cfg.AllowEnv),
		run:      StateFromBool(cfg.AllowRun),
		plugin:   StateFromBool(cfg.AllowPlugin),
		hrtime:   StateFromBool(cfg.AllowHrtime),
		prompter: prompter,
	}, nil
}

// permissionsWire is the JSON-visible shape of Permissions, per §6.
type permissionsWire struct {
	Read   UnaryPermission[Path]   `json:"read"`
	Write  UnaryPermission[Path]   `json:"write"`
	Net    UnaryPermission[NetKey] `json:"net"`
	Env    State                   `json:"env"`
	Run    State                   `json:"run"`
	Plugin State                   `json:"plugin"`
	Hrtime State                   `json:"hrtime"`
}

// MarshalJSON renders the seven-field tagged object described in §6.
func (p *Permissions) MarshalJSON() ([]byte, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return json.Marshal(permissionsWire{
		Read:   p.read,
		Write:  p.write,
		Net:    p.net,
		Env:    p.env,
		Run:    p.run,
		Plugin: p.plugin,
		Hrtime: p.hrtime,
	})
}

// UnmarshalJSON parses the §6 wire shape, rejecting unknown top-level
// fields. Missing list fields default to empty, and a missing global_state
// or scalar state defaults to Prompt: the State zero value is Granted, so
// the wire value is pre-filled with Prompt before decoding.
func (p *Permissions) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	wire := permissionsWire{
		Read:   newUnaryPermission[Path](Prompt),
		Write:  newUnaryPermission[Path](Prompt),
		Net:    newUnaryPermission[NetKey](Prompt),
		Env:    Prompt,
		Run:    Prompt,
		Plugin: Prompt,
		Hrtime: Prompt,
	}
	if err := dec.Decode(&wire); err != nil {
		return &Error{Kind: InvalidArgument, Message: "invalid permissions object: " + err.Error()}
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	p.read = wire.Read
	if p.read.GrantedList == nil {
		p.read.GrantedList = make(map[Path]struct{})
	}
	if p.read.DeniedList == nil {
		p.read.DeniedList = make(map[Path]struct{})
	}
	p.write = wire.Write
	if p.write.GrantedList == nil {
		p.write.GrantedList = make(map[Path]struct{})
	}
	if p.write.DeniedList == nil {
		p.write.DeniedList = make(map[Path]struct{})
	}
	p.net = wire.Net
	if p.net.GrantedList == nil {
		p.net.GrantedList = make(map[NetKey]struct{})
	}
	if p.net.DeniedList == nil {
		p.net.DeniedList = make(map[NetKey]struct{})
	}
	p.env = wire.Env
	p.run = wire.Run
	p.plugin = wire.Plugin
	p.hrtime = wire.Hrtime
	p.prompter = NewStdioPrompter()
	return nil
}

// Equal reports whether p and other carry the same authority — same
// states and same set contents for every resource class. Used by tests to
// check the serialize/parse round-trip invariant (§8, invariant 7).
func (p *Permissions) Equal(other *Permissions) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	other.mu.RLock()
	defer other.mu.RUnlock()

	if p.env != other.env || p.run != other.run || p.plugin != other.plugin || p.hrtime != other.hrtime {
		return false
	}
	return unaryEqual(p.read, other.read) &&
		unaryEqual(p.write, other.write) &&
		unaryEqual(p.net, other.net)
}

func unaryEqual[T ~string](a, b UnaryPermission[T]) bool {
	if a.GlobalState != b.GlobalState {
		return false
	}
	if len(a.GrantedList) != len(b.GrantedList) || len(a.DeniedList) != len(b.DeniedList) {
		return false
	}
	for k := range a.GrantedList {
		if _, ok := b.GrantedList[k]; !ok {
			return false
		}
	}
	for k := range a.DeniedList {
		if _, ok := b.DeniedList[k]; !ok {
			return false
		}
	}
	return true
}
