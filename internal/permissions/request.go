package permissions

import "fmt"

// queryNetURLLocked is QueryNetURL's body assuming the caller already holds
// p.mu (read or write).
func (p *Permissions) queryNetURLLocked(rawURL *string) (State, error) {
	if rawURL == nil {
		return p.net.GlobalState, nil
	}
	host, port, err := parseHostPort(*rawURL)
	if err != nil {
		return Prompt, err
	}
	return p.queryNetLocked(host, port), nil
}

// RequestRead interactively acquires read access to path (or, if path is
// nil, unbounded read access). If the current state isn't Prompt, the
// existing verdict is returned unchanged and the operator is never asked.
func (p *Permissions) RequestRead(path *string) (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if path == nil {
		state := p.queryReadLocked(nil)
		if state != Prompt {
			return state, nil
		}
		if p.prompter.Prompt("dougless requests read access") {
			p.read.GrantedList = make(map[Path]struct{})
			p.read.GlobalState = Granted
			return Granted, nil
		}
		p.read.GlobalState = Denied
		return Denied, nil
	}

	resolved, display, err := p.resolvedAndDisplayPath(*path)
	if err != nil {
		return Prompt, err
	}
	state := p.queryReadLocked(&resolved)
	if state != Prompt {
		return state, nil
	}
	if p.prompter.Prompt(fmt.Sprintf("dougless requests read access to %q", display)) {
		pruneDescendants(p.read.GrantedList, resolved)
		p.read.GrantedList[Path(resolved)] = struct{}{}
		return Granted, nil
	}
	pruneAncestors(p.read.DeniedList, resolved)
	p.read.DeniedList[Path(resolved)] = struct{}{}
	p.read.GlobalState = Denied
	return Denied, nil
}

// RequestWrite is RequestRead for the write resource class.
func (p *Permissions) RequestWrite(path *string) (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if path == nil {
		state := p.queryWriteLocked(nil)
		if state != Prompt {
			return state, nil
		}
		if p.prompter.Prompt("dougless requests write access") {
			p.write.GrantedList = make(map[Path]struct{})
			p.write.GlobalState = Granted
			return Granted, nil
		}
		p.write.GlobalState = Denied
		return Denied, nil
	}

	resolved, display, err := p.resolvedAndDisplayPath(*path)
	if err != nil {
		return Prompt, err
	}
	state := p.queryWriteLocked(&resolved)
	if state != Prompt {
		return state, nil
	}
	if p.prompter.Prompt(fmt.Sprintf("dougless requests write access to %q", display)) {
		pruneDescendants(p.write.GrantedList, resolved)
		p.write.GrantedList[Path(resolved)] = struct{}{}
		return Granted, nil
	}
	pruneAncestors(p.write.DeniedList, resolved)
	p.write.DeniedList[Path(resolved)] = struct{}{}
	p.write.GlobalState = Denied
	return Denied, nil
}

// RequestNet interactively acquires network access to rawURL (or, if
// rawURL is nil, unbounded network access). The original URL string, not
// its parsed host:port, is what gets inserted into the granted/denied list.
func (p *Permissions) RequestNet(rawURL *string) (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	state, err := p.queryNetURLLocked(rawURL)
	if err != nil {
		return Prompt, err
	}
	if state != Prompt {
		return state, nil
	}

	if rawURL == nil {
		if p.prompter.Prompt("dougless requests network access") {
			p.net.GrantedList = make(map[NetKey]struct{})
			p.net.GlobalState = Granted
			return Granted, nil
		}
		p.net.GlobalState = Denied
		return Denied, nil
	}

	if p.prompter.Prompt(fmt.Sprintf("dougless requests network access to %q", *rawURL)) {
		p.net.GrantedList[NetKey(*rawURL)] = struct{}{}
		return Granted, nil
	}
	p.net.DeniedList[NetKey(*rawURL)] = struct{}{}
	p.net.GlobalState = Denied
	return Denied, nil
}

// RequestNetHostPort is RequestNet for a caller that already has a bare
// host and port rather than a URL to parse (e.g. binding a listen socket).
func (p *Permissions) RequestNetHostPort(host string, port uint16) (State, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	portStr := portString(port)
	state := p.queryNetLocked(host, portStr)
	if state != Prompt {
		return state, nil
	}

	key := host
	if portStr != "" {
		key = host + ":" + portStr
	}
	if p.prompter.Prompt(fmt.Sprintf("dougless requests network access to %q", key)) {
		p.net.GrantedList[NetKey(key)] = struct{}{}
		return Granted, nil
	}
	p.net.DeniedList[NetKey(key)] = struct{}{}
	p.net.GlobalState = Denied
	return Denied, nil
}

// RequestEnv interactively acquires access to environment variables.
func (p *Permissions) RequestEnv() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.env == Prompt {
		if p.prompter.Prompt("dougless requests access to environment variables") {
			p.env = Granted
		} else {
			p.env = Denied
		}
	}
	return p.env
}

// RequestRun interactively acquires access to run a subprocess.
func (p *Permissions) RequestRun() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.run == Prompt {
		if p.prompter.Prompt("dougless requests to run a subprocess") {
			p.run = Granted
		} else {
			p.run = Denied
		}
	}
	return p.run
}

// RequestPlugin interactively acquires access to load native plugins.
func (p *Permissions) RequestPlugin() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.plugin == Prompt {
		if p.prompter.Prompt("dougless requests to open plugins") {
			p.plugin = Granted
		} else {
			p.plugin = Denied
		}
	}
	return p.plugin
}

// RequestHrtime interactively acquires access to high-resolution time.
func (p *Permissions) RequestHrtime() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.hrtime == Prompt {
		if p.prompter.Prompt("dougless requests access to high precision time") {
			p.hrtime = Granted
		} else {
			p.hrtime = Denied
		}
	}
	return p.hrtime
}
