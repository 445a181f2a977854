package recycle

import "testing"

func TestStripExtendedPrefix(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`\\?\C:\temp\a.txt`, `C:\temp\a.txt`},
		{`C:\temp\a.txt`, `C:\temp\a.txt`},
		{`\\?\UNC\server\share\f`, `UNC\server\share\f`},
		{`\\server\share\f`, `\\server\share\f`},
		{``, ``},
	}

	for _, tt := range tests {
		if got := stripExtendedPrefix(tt.in); got != tt.want {
			t.Errorf("stripExtendedPrefix(%q) = %q, expected %q", tt.in, got, tt.want)
		}
	}
}
