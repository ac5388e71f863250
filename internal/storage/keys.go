package storage

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"
)

var whitespace = regexp.MustCompile(`\s+`)

// ResumeKey derives a stable key from the uploaded file name so that
// re-uploading a file with the same name overwrites it instead of adding a copy.
// "My CV 2024.pdf" -> "<folder>/about/resume/My_CV_2024.pdf"
func ResumeKey(folder, filename string) string {
	name := path.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := path.Ext(name)
	base := strings.TrimSuffix(name, ext)
	base = whitespace.ReplaceAllString(strings.TrimSpace(base), "_")
	if base == "" || base == "." || base == "/" {
		base = "resume"
	}
	return join(folder, "about", "resume", base+ext)
}

// ProfilePicKey returns a fresh unique key for a profile picture.
func ProfilePicKey(folder, filename string) string {
	return join(folder, "about", "profilePic", uuid.NewString()+cleanExt(filename))
}

// ServiceBackgroundKey returns a fresh unique key for a service section background.
func ServiceBackgroundKey(folder string, id int, filename string) string {
	return join(folder, "service", strconv.Itoa(id), uuid.NewString()+cleanExt(filename))
}

func cleanExt(filename string) string {
	ext := strings.ToLower(path.Ext(filename))
	if whitespace.MatchString(ext) || len(ext) > 10 {
		return ""
	}
	return ext
}

func join(parts ...string) string {
	nonEmpty := parts[:0:0]
	for _, p := range parts {
		if p = strings.Trim(p, "/"); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, "/")
}
