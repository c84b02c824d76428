package store

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/ziadkadry99/gitscout/internal/errs"
)

// ProjectNameFromURL derives a project name from a code-host URL by
// normalizing scheme, host, user, and repo into a lowercased,
// underscore-joined token, stripping a trailing ".git".
//
//	https://github.com/Acme/My-Repo.git -> github_com_acme_my_repo
func ProjectNameFromURL(rawURL string) (string, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return "", fmt.Errorf("%w: codehost url is empty", errs.ErrValidation)
	}

	// scp-style git URLs (git@host:user/repo.git) are not url.Parse-able.
	if strings.Contains(rawURL, "@") && !strings.Contains(rawURL, "://") {
		rawURL = "ssh://" + strings.Replace(rawURL, ":", "/", 1)
	}

	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return "", fmt.Errorf("%w: invalid codehost url %q", errs.ErrValidation, rawURL)
	}

	parts := []string{u.Hostname()}
	for _, seg := range strings.Split(u.Path, "/") {
		seg = strings.TrimSuffix(seg, ".git")
		if seg != "" {
			parts = append(parts, seg)
		}
	}

	name := strings.ToLower(strings.Join(parts, "_"))
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, name)

	return name, nil
}
