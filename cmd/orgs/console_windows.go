//go:build windows

package main

import (
	"sync"

	"golang.org/x/sys/windows"
)

// savedConsole holds the console modes present before the UI enabled virtual terminal input.
var savedConsole struct {
	once    sync.Once
	ok      bool
	in, out uint32
}

func stdHandles() (in, out windows.Handle, err error) {
	if in, err = windows.GetStdHandle(windows.STD_INPUT_HANDLE); err != nil {
		return 0, 0, err
	}
	out, err = windows.GetStdHandle(windows.STD_OUTPUT_HANDLE)
	return in, out, err
}

func captureConsoleState() {
	savedConsole.once.Do(func() {
		in, out, err := stdHandles()
		if err != nil {
			return
		}
		if windows.GetConsoleMode(in, &savedConsole.in) != nil {
			return
		}
		if windows.GetConsoleMode(out, &savedConsole.out) != nil {
			return
		}
		savedConsole.ok = true
	})
}

func restoreConsoleState() {
	if !savedConsole.ok {
		return
	}
	in, out, err := stdHandles()
	if err != nil {
		return
	}
	_ = windows.SetConsoleMode(in, savedConsole.in)
	_ = windows.SetConsoleMode(out, savedConsole.out)
}
