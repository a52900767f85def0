// Package watch reports changes other processes make to the directory being
// labeled: files dropped in or removed, and label directories created or
// deleted. The session never reads these notices; front-ends show them.
package watch
