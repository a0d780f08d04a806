// Package main provides catalogctl, the catalog maintenance tool.
//
// Usage:
//
//	catalogctl seed editions.jsonl --backfill
//	catalogctl search "война и мир" --mode title
//	catalogctl backfill --reset
package main

import "github.com/bibliobot/bibliobot-server/internal/cli"

func main() {
	cli.Execute()
}
