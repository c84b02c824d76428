package store

import "testing"

func TestProjectNameFromURL(t *testing.T) {
	cases := []struct {
		url  string
		want string
	}{
		{"https://github.com/Acme/My-Repo.git", "github_com_acme_my_repo"},
		{"https://github.com/acme/repo", "github_com_acme_repo"},
		{"git@github.com:acme/repo.git", "github_com_acme_repo"},
		{"https://gitlab.example.com/group/sub/repo.git", "gitlab_example_com_group_sub_repo"},
	}
	for _, tc := range cases {
		got, err := ProjectNameFromURL(tc.url)
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tc.url, err)
			continue
		}
		if got != tc.want {
			t.Errorf("%s: got %q, want %q", tc.url, got, tc.want)
		}
	}
}

func TestProjectNameFromURLInvalid(t *testing.T) {
	for _, raw := range []string{"", "   ", "not a url"} {
		if _, err := ProjectNameFromURL(raw); err == nil {
			t.Errorf("%q: expected error", raw)
		}
	}
}
