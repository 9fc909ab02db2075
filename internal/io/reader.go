package io

import (
	"bufio"
	"os"
	"strings"

	"github.com/pagedigest/webpage-digest/internal/config"
)

// URLReader reads the list of pages to visit
type URLReader struct {
	Config *config.IOConfig
}

// NewURLReader creates a new URL reader
func NewURLReader(config *config.IOConfig) *URLReader {
	return &URLReader{
		Config: config,
	}
}

// ReadFromFile reads URLs from a file, one URL or bare hostname per line.
// Blank lines are ignored; lines without a scheme get https:// prepended.
// Nothing else is validated here — a malformed entry is detected by the
// fetch failing downstream.
func (r *URLReader) ReadFromFile(filename string) ([]string, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	var urls []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "http://") && !strings.HasPrefix(line, "https://") {
			line = "https://" + line
		}
		urls = append(urls, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return urls, nil
}

// Load returns the URLs from the configured input file
func (r *URLReader) Load() ([]string, error) {
	return r.ReadFromFile(r.Config.InputFile)
}
