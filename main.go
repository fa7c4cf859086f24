package main

import (
	"embed"
	"fmt"
	"os"

	"github.com/egoavara/plugin-convert/cmd"
	"github.com/egoavara/plugin-convert/internal/config"
	"github.com/egoavara/plugin-convert/internal/i18n"
)

//go:embed locales/*.json
var localeFS embed.FS

func main() {
	// i18n 초기화
	if err := i18n.Init(localeFS, i18n.Resolve(config.GetLocale())); err != nil {
		fmt.Fprintln(os.Stderr, err)
	}

	cmd.Execute()
}
