package permissions

// ChildSpec describes the capability set a would-be child execution
// context is asking for. Fork succeeds only if every field is no stronger
// than the parent's corresponding field.
type ChildSpec struct {
	Read   UnaryPermission[Path]
	Write  UnaryPermission[Path]
	Net    UnaryPermission[NetKey]
	Env    State
	Run    State
	Plugin State
	Hrtime State
}

// Fork derives a child Permissions value from spec, succeeding only if the
// child is no stronger than the parent in every dimension (§4.4). On
// success the child is materialized exactly as specified — Fork never
// implicitly tightens it further.
func (p *Permissions) Fork(spec ChildSpec) (*Permissions, error) {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if !p.read.dominates(spec.Read) ||
		!p.write.dominates(spec.Write) ||
		!p.net.dominates(spec.Net) ||
		!p.env.dominates(spec.Env) ||
		!p.run.dominates(spec.Run) ||
		!p.plugin.dominates(spec.Plugin) ||
		!p.hrtime.dominates(spec.Hrtime) {
		return nil, escalationErr()
	}

	return &Permissions{
		read:     spec.Read.clone(),
		write:    spec.Write.clone(),
		net:      spec.Net.clone(),
		env:      spec.Env,
		run:      spec.Run,
		plugin:   spec.Plugin,
		hrtime:   spec.Hrtime,
		prompter: p.prompter,
	}, nil
}

// Snapshot returns a ChildSpec describing p's own current capability set —
// useful as a starting point a caller can narrow before calling Fork, and
// for the reflexivity property in §8 (a parent should always be able to
// fork into its own unmodified fields).
func (p *Permissions) Snapshot() ChildSpec {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return ChildSpec{
		Read:   p.read.clone(),
		Write:  p.write.clone(),
		Net:    p.net.clone(),
		Env:    p.env,
		Run:    p.run,
		Plugin: p.plugin,
		Hrtime: p.hrtime,
	}
}
