package version

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"
)

// Current is the version of this build, overridden with -ldflags
var Current = "0.1.0"

const (
	// ReleasesURL is the GitHub API endpoint describing the latest release
	ReleasesURL  = "https://api.github.com/repos/studiowebux/marketcli/releases/latest"
	checkTimeout = 5 * time.Second
)

// Release is the part of a GitHub release we read
type Release struct {
	TagName string `json:"tag_name"`
	Name    string `json:"name"`
	HTMLURL string `json:"html_url"`
}

// Update describes the outcome of a version check
type Update struct {
	Current   string
	Latest    string
	URL       string
	Available bool
}

// Checker looks up the latest published release
type Checker struct {
	URL    string
	Client *http.Client
}

// NewChecker returns a checker against the public releases API
func NewChecker() *Checker {
	return &Checker{
		URL:    ReleasesURL,
		Client: &http.Client{Timeout: checkTimeout},
	}
}

// Check reports whether a release newer than current exists
func (c *Checker) Check(ctx context.Context, current string) (Update, error) {
	current = strings.TrimPrefix(current, "v")
	update := Update{Current: current}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return update, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", "marketcli/"+current)
	req.Header.Set("Accept", "application/vnd.github+json")

	resp, err := c.Client.Do(req)
	if err != nil {
		return update, fmt.Errorf("failed to fetch latest release: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return update, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return update, fmt.Errorf("failed to decode response: %w", err)
	}

	update.Latest = strings.TrimPrefix(release.TagName, "v")
	update.URL = release.HTMLURL
	update.Available = update.Latest != "" && IsNewer(update.Latest, current)
	return update, nil
}

// IsNewer compares dotted numeric versions, ignoring pre-release and build
// suffixes. Missing parts count as zero.
func IsNewer(latest, current string) bool {
	a, b := parse(latest), parse(current)
	for i := 0; i < max(len(a), len(b)); i++ {
		x, y := at(a, i), at(b, i)
		if x != y {
			return x > y
		}
	}
	return false
}

func at(parts []int, i int) int {
	if i < len(parts) {
		return parts[i]
	}
	return 0
}

func parse(v string) []int {
	if idx := strings.IndexAny(v, "-+"); idx != -1 {
		v = v[:idx]
	}
	fields := strings.Split(v, ".")
	parts := make([]int, 0, len(fields))
	for _, f := range fields {
		n, err := strconv.Atoi(f)
		if err != nil {
			continue
		}
		parts = append(parts, n)
	}
	return parts
}
