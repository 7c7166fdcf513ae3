//go:build !windows

package main

// Terminal modes are restored by bubbletea itself outside Windows.
func captureConsoleState() {}

func restoreConsoleState() {}
