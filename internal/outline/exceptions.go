package outline

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"

	"github.com/dgallion1/bookbuild/internal/booktree"
)

// Exceptions maps an observed-wrong dotted numbering to the correct one.
// The table is loaded once per run and applied to parsed headings just
// before alignment.
type Exceptions map[string]string

var reNumbering = regexp.MustCompile(`^([\d.]+)`)

// LoadExceptions reads wrong = correct pairs from path. A missing file is
// not an error: it simply means no corrections.
func LoadExceptions(path string) (Exceptions, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Exceptions{}, nil
		}
		return nil, fmt.Errorf("open exceptions file: %w", err)
	}
	defer f.Close()
	return ParseExceptions(f)
}

// ParseExceptions parses newline-delimited "wrong = correct" numbering
// pairs. Comment lines starting with # and blank lines are skipped, and so
// is any line that does not carry a numbering on both sides of the =.
func ParseExceptions(r io.Reader) (Exceptions, error) {
	exc := Exceptions{}
	scanner := bufio.NewScanner(r)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		wrong, correct, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		wrongNum := reNumbering.FindString(strings.TrimSpace(wrong))
		correctNum := reNumbering.FindString(strings.TrimSpace(correct))
		if wrongNum == "" || correctNum == "" {
			continue
		}
		exc[wrongNum] = correctNum
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read exceptions: %w", err)
	}
	return exc, nil
}

// Apply substitutes the correct numbering for key when the table has an
// entry for it. A malformed replacement (not 2 or 3 dot-separated integers)
// leaves the original key untouched.
func (e Exceptions) Apply(key booktree.Key) booktree.Key {
	correct, ok := e[key.String()]
	if !ok {
		return key
	}
	parts := strings.Split(correct, ".")
	nums := make([]int, 0, len(parts))
	for _, p := range parts {
		n, err := strconv.Atoi(p)
		if err != nil {
			return key
		}
		nums = append(nums, n)
	}
	switch len(nums) {
	case 2:
		return booktree.Key{Chapter: nums[0], Section: nums[1], Subsection: booktree.NoSubsection}
	case 3:
		return booktree.Key{Chapter: nums[0], Section: nums[1], Subsection: nums[2]}
	default:
		return key
	}
}
