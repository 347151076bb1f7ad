package permissions

import "strconv"

// The *Locked helpers below assume the caller already holds at least a read
// lock on p.mu (Request/Revoke hold the write lock, which is strictly
// stronger, so they call straight through). This indirection exists purely
// to avoid recursive locking: sync.RWMutex is not reentrant, and several
// Request/Revoke/Check flows need to reuse the same query logic while
// already holding the exclusive lock.

// pathState implements the shared §4.3 query algorithm for a path-keyed
// unary permission: Denied wins if global_state is Denied and the deny-list
// blocklist-matches (or there's no target at all); Granted wins if
// global_state is Granted or the allow-list allowlist-matches; otherwise
// Prompt.
func pathState(u UnaryPermission[Path], resolved *string) State {
	if u.GlobalState == Denied {
		blocked := resolved == nil || matchPathBlocklist(*resolved, u.DeniedList)
		if blocked {
			return Denied
		}
	}
	if u.GlobalState == Granted {
		return Granted
	}
	if resolved != nil && matchPathAllowlist(*resolved, u.GrantedList) {
		return Granted
	}
	return Prompt
}

// netState implements the §4.3 query algorithm for the net unary
// permission given an already-resolved host and effective port.
func netState(u UnaryPermission[NetKey], host, port string) State {
	if u.GlobalState == Denied && matchHostPort(host, port, u.DeniedList) {
		return Denied
	}
	if u.GlobalState == Granted || matchHostPort(host, port, u.GrantedList) {
		return Granted
	}
	return Prompt
}

func (p *Permissions) queryReadLocked(resolved *string) State {
	return pathState(p.read, resolved)
}

func (p *Permissions) queryWriteLocked(resolved *string) State {
	return pathState(p.write, resolved)
}

func (p *Permissions) queryNetLocked(host, port string) State {
	return netState(p.net, host, port)
}

// QueryRead returns the current state for a read of path, or for an
// unbounded request if path is nil.
func (p *Permissions) QueryRead(path *string) (State, error) {
	resolved, err := resolvedPtr(path)
	if err != nil {
		return Prompt, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.queryReadLocked(resolved), nil
}

// QueryWrite returns the current state for a write of path, or for an
// unbounded request if path is nil.
func (p *Permissions) QueryWrite(path *string) (State, error) {
	resolved, err := resolvedPtr(path)
	if err != nil {
		return Prompt, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.queryWriteLocked(resolved), nil
}

// QueryNet returns the current state for a connection to host on port
// (port 0 meaning "no specific port").
func (p *Permissions) QueryNet(host string, port uint16) State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.queryNetLocked(host, portString(port))
}

// QueryNetURL parses rawURL and reports the current net state for its host
// and effective port. A nil rawURL reports the bare net.global_state.
func (p *Permissions) QueryNetURL(rawURL *string) (State, error) {
	if rawURL == nil {
		p.mu.RLock()
		defer p.mu.RUnlock()
		return p.net.GlobalState, nil
	}
	host, port, err := parseHostPort(*rawURL)
	if err != nil {
		return Prompt, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.queryNetLocked(host, port), nil
}

// QueryEnv returns the current env state.
func (p *Permissions) QueryEnv() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.env
}

// QueryRun returns the current run (subprocess execution) state.
func (p *Permissions) QueryRun() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.run
}

// QueryPlugin returns the current native-plugin-loading state.
func (p *Permissions) QueryPlugin() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.plugin
}

// QueryHrtime returns the current high-resolution-timer state.
func (p *Permissions) QueryHrtime() State {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.hrtime
}

// resolvedPtr resolves path (if non-nil) from cwd and returns a pointer to
// the resolved string, or nil if path was nil.
func resolvedPtr(path *string) (*string, error) {
	if path == nil {
		return nil, nil
	}
	resolved, err := resolveFromCWD(*path)
	if err != nil {
		return nil, err
	}
	return &resolved, nil
}

func portString(port uint16) string {
	if port == 0 {
		return ""
	}
	return strconv.Itoa(int(port))
}
