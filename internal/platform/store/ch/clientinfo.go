package ch

import (
	"os"
	"runtime/debug"
	"strconv"
	"strings"

	"genscan/internal/core/version"

	"github.com/ClickHouse/clickhouse-go/v2"
)

// BuildClientInfo tags queries in system.query_log with the binary, its role
// ("api", "migrate", "detect") and the detector engine that produced the rows
func BuildClientInfo(name, role string) clickhouse.ClientInfo {
	bi := version.Info()
	host, _ := os.Hostname()
	commit := bi.Commit
	if commit == "" || commit == "none" {
		commit = vcsRevision()
	}

	info := clickhouse.ClientInfo{}
	for _, p := range [][2]string{
		{name, bi.Version},
		{"role", role},
		{"engine", strconv.Itoa(bi.Engine)},
		{"commit", commit},
		{"host", host},
	} {
		info.Products = append(info.Products, struct{ Name, Version string }{
			Name:    strings.TrimSpace(p[0]),
			Version: strings.TrimSpace(p[1]),
		})
	}
	return info
}

// vcsRevision is the short revision stamped by go build, for binaries built without ldflags
func vcsRevision() string {
	if bi, ok := debug.ReadBuildInfo(); ok {
		for _, s := range bi.Settings {
			if s.Key == "vcs.revision" && len(s.Value) >= 7 {
				return s.Value[:7]
			}
		}
	}
	return "unknown"
}
