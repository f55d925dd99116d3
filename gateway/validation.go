package gateway

import "regexp"

const MaxFolderNameLength = 100

var folderNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+$`)

// ValidFolderName accepts letters, digits, '-' and '_' up to 100 characters.
func ValidFolderName(name string) bool {
	return len(name) <= MaxFolderNameLength && folderNamePattern.MatchString(name)
}
