// Package session holds process-scoped bot state that is lost on reconnect.
package session

import (
	"os"
	"sync"

	"github.com/spigell/careermate/internal/chat"
)

// State owns the per-process tables. Handlers receive it by reference.
type State struct {
	Invites *Invites
	Resumes *Resumes
}

func New() *State {
	return &State{Invites: NewInvites(), Resumes: NewResumes()}
}

// Reset drops every table. Remembered resume files are removed from disk.
func (s *State) Reset() {
	s.Invites.Reset()
	s.Resumes.Reset()
}

// Invites keeps the last known usage count per invite code per guild.
type Invites struct {
	mu     sync.Mutex
	guilds map[string]map[string]int
}

func NewInvites() *Invites {
	return &Invites{guilds: make(map[string]map[string]int)}
}

// Snapshot replaces the guild's snapshot.
func (i *Invites) Snapshot(guildID string, invites []chat.Invite) {
	uses := make(map[string]int, len(invites))
	for _, inv := range invites {
		uses[inv.Code] = inv.Uses
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	i.guilds[guildID] = uses
}

// Diff returns the first snapshotted invite whose uses grew and replaces the
// snapshot with current. Nothing is attributed without a previous snapshot
// for the guild, and codes missing from it are never credited.
func (i *Invites) Diff(guildID string, current []chat.Invite) (chat.Invite, bool) {
	i.mu.Lock()
	before, known := i.guilds[guildID]
	i.mu.Unlock()

	var (
		used  chat.Invite
		found bool
	)
	if known {
		for _, inv := range current {
			prev, ok := before[inv.Code]
			if ok && inv.Uses > prev {
				used, found = inv, true
				break
			}
		}
	}

	i.Snapshot(guildID, current)
	return used, found
}

func (i *Invites) Forget(guildID string) {
	i.mu.Lock()
	defer i.mu.Unlock()
	delete(i.guilds, guildID)
}

func (i *Invites) Reset() {
	i.mu.Lock()
	defer i.mu.Unlock()
	i.guilds = make(map[string]map[string]int)
}

// Resumes remembers the last resume file each user uploaded.
type Resumes struct {
	mu    sync.Mutex
	paths map[string]string
}

func NewResumes() *Resumes {
	return &Resumes{paths: make(map[string]string)}
}

// Remember stores path for userID, removing the file it replaces.
func (r *Resumes) Remember(userID, path string) {
	r.mu.Lock()
	old := r.paths[userID]
	r.paths[userID] = path
	r.mu.Unlock()

	if old != "" && old != path {
		_ = os.Remove(old)
	}
}

// Lookup returns the remembered path if the file still exists.
func (r *Resumes) Lookup(userID string) (string, bool) {
	r.mu.Lock()
	path, ok := r.paths[userID]
	r.mu.Unlock()
	if !ok {
		return "", false
	}

	if _, err := os.Stat(path); err != nil {
		r.mu.Lock()
		if r.paths[userID] == path {
			delete(r.paths, userID)
		}
		r.mu.Unlock()
		return "", false
	}
	return path, true
}

func (r *Resumes) Reset() {
	r.mu.Lock()
	paths := r.paths
	r.paths = make(map[string]string)
	r.mu.Unlock()

	for _, path := range paths {
		_ = os.Remove(path)
	}
}
