package util

import (
	"os"
	"os/user"
	"path/filepath"
	"strconv"
	"strings"
)

//TimeFormat stores a correctly formatted timestamp
const TimeFormat string = "2006-01-02-T15:04:05-0700"

// Exists returns true if file or directory exists
func Exists(path string) bool {
	_, err := os.Stat(path)
	if err == nil {
		return true
	}
	if os.IsNotExist(err) {
		return false
	}
	return true
}

// ExpandHome replaces a leading ~ with the current user's home directory
func ExpandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	usr, err := user.Current()
	if err != nil {
		return path
	}
	return filepath.Join(usr.HomeDir, strings.TrimPrefix(path, "~"))
}

//FormatFloat prints a float in its shortest exact form (72.3, 0, 12.5)
func FormatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

//FormatFixed prints a float with exactly one decimal place
func FormatFixed(f float64) string {
	return strconv.FormatFloat(f, 'f', 1, 64)
}

//StringInSlice returns true if the string is an element of the array
func StringInSlice(value string, list []string) bool {
	for _, entry := range list {
		if entry == value {
			return true
		}
	}
	return false
}

//OrNA returns the string or N/A if the string is empty
func OrNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}
