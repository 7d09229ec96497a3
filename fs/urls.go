package fs

import (
	"bufio"
	"io"
	"os"
	"strings"
)

// ParseURLs reads one URL per line. Blank lines and lines starting with #
// are skipped. URLs are returned as written; validation happens per item
// during scraping.
func ParseURLs(r io.Reader) ([]string, error) {
	var urls []string
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		urls = append(urls, line)
	}
	return urls, scanner.Err()
}

// ReadURLs reads a URL list file.
func ReadURLs(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return ParseURLs(f)
}
