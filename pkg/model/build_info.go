package model

import "fmt"

// BuildInfo describes the binary itself, stamped in at release time.
type BuildInfo struct {
	Version   string
	CommitSHA string
	Date      string
}

func (b BuildInfo) String() string {
	s := fmt.Sprintf("v%s", b.Version)
	if b.Version == "dev" {
		s = "dev"
	}
	if b.CommitSHA != "" {
		s += fmt.Sprintf(", commit %s", b.CommitSHA)
	}
	if b.Date != "" {
		s += fmt.Sprintf(", built %s", b.Date)
	}
	return s
}
