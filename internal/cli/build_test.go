package cli

import "testing"

func TestResourceName(t *testing.T) {
	tests := []struct {
		name string
		path string
		repo string
		want string
	}{
		{"local path", "/home/dev/projects/webapp", "", "webapp"},
		{"repo url", "", "https://example.com/team/webapp.git", "webapp"},
		{"repo url without suffix", "", "https://example.com/team/webapp", "webapp"},
		{"repo url trailing slash", "", "https://example.com/team/webapp/", "webapp"},
		{"path wins over repo", "/srv/api", "https://example.com/other.git", "api"},
		{"empty inputs", "", "", "service"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := resourceName(tt.path, tt.repo)
			if got != tt.want {
				t.Errorf("resourceName(%q, %q) = %q, want %q", tt.path, tt.repo, got, tt.want)
			}
		})
	}
}
