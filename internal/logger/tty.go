package logger

import "os"

// IsTTY checks if the given file is connected to a terminal.
func IsTTY(f *os.File) bool {
	stat, err := f.Stat()
	return err == nil && (stat.Mode()&os.ModeCharDevice) != 0
}
