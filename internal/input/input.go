// Package input loads integer arrays from files and command arguments.
package input

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// LoadValues reads integers from the provided file path. Values may be
// separated by whitespace, commas or newlines; lines starting with # are
// ignored.
func LoadValues(path string) ([]int, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			_ = cerr
		}
	}()
	values, err := ReadValues(file)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return values, nil
}

// ReadValues reads integers from r.
func ReadValues(r io.Reader) ([]int, error) {
	var values []int
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		parsed, err := ParseValues(Fields(text))
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		values = append(values, parsed...)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(values) == 0 {
		return nil, fmt.Errorf("value list is empty")
	}
	return values, nil
}

// Fields splits s on commas and whitespace.
func Fields(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
	})
}

// ParseValues converts each token to an int.
func ParseValues(tokens []string) ([]int, error) {
	values := make([]int, 0, len(tokens))
	for _, tok := range tokens {
		for _, part := range Fields(tok) {
			v, err := strconv.Atoi(part)
			if err != nil {
				return nil, fmt.Errorf("invalid value %q", part)
			}
			values = append(values, v)
		}
	}
	return values, nil
}
