package permissions

// removeCoveredBy deletes every entry of set that target is an ancestor-or-
// self of — i.e. every grant that target subsumes. This is what "revoke at
// target" means for a granted_list: target and all its descendant grants
// collapse together.
func removeCoveredBy[T ~string](set map[T]struct{}, target string) {
	for entry := range set {
		if isPathAncestorOrSelf(target, string(entry)) {
			delete(set, entry)
		}
	}
}

// RevokeRead downgrades read access at path (or, with a nil path, clears
// the allow-list entirely and drops a Granted global state to Prompt —
// an existing Denied state is left as-is). Returns the new query verdict.
func (p *Permissions) RevokeRead(path *string) (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if path == nil {
		p.read.GrantedList = make(map[Path]struct{})
		if p.read.GlobalState == Granted {
			p.read.GlobalState = Prompt
		}
		return p.queryReadLocked(nil), nil
	}

	resolved, err := resolveFromCWD(*path)
	if err != nil {
		return Prompt, err
	}
	removeCoveredBy(p.read.GrantedList, resolved)
	return p.queryReadLocked(&resolved), nil
}

// RevokeWrite is RevokeRead for the write resource class.
func (p *Permissions) RevokeWrite(path *string) (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if path == nil {
		p.write.GrantedList = make(map[Path]struct{})
		if p.write.GlobalState == Granted {
			p.write.GlobalState = Prompt
		}
		return p.queryWriteLocked(nil), nil
	}

	resolved, err := resolveFromCWD(*path)
	if err != nil {
		return Prompt, err
	}
	removeCoveredBy(p.write.GrantedList, resolved)
	return p.queryWriteLocked(&resolved), nil
}

// RevokeNet downgrades network access for rawURL (or, with a nil rawURL,
// clears the allow-list entirely and drops a Granted global state to
// Prompt). Returns the new query verdict.
func (p *Permissions) RevokeNet(rawURL *string) (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if rawURL == nil {
		p.net.GrantedList = make(map[NetKey]struct{})
		if p.net.GlobalState == Granted {
			p.net.GlobalState = Prompt
		}
		return p.queryNetURLLocked(nil)
	}

	delete(p.net.GrantedList, NetKey(*rawURL))
	return p.queryNetURLLocked(rawURL)
}

// RevokeEnv downgrades a Granted env state to Prompt; any other state is
// left unchanged.
func (p *Permissions) RevokeEnv() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.env == Granted {
		p.env = Prompt
	}
	return p.env
}

// RevokeRun downgrades a Granted run state to Prompt.
func (p *Permissions) RevokeRun() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.run == Granted {
		p.run = Prompt
	}
	return p.run
}

// RevokePlugin downgrades a Granted plugin state to Prompt.
func (p *Permissions) RevokePlugin() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.plugin == Granted {
		p.plugin = Prompt
	}
	return p.plugin
}

// RevokeHrtime downgrades a Granted hrtime state to Prompt.
func (p *Permissions) RevokeHrtime() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hrtime == Granted {
		p.hrtime = Prompt
	}
	return p.hrtime
}
