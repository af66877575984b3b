// atlas-loader 輸出 models 對應的 DDL，供 atlas.hcl 的 external_schema 使用
package main

import (
	"flag"
	"fmt"
	"io"
	"os"

	"ariga.io/atlas-provider-gorm/gormschema"

	"imagehost/models"
)

func main() {
	dialect := flag.String("dialect", "postgres", "postgres or sqlite")
	flag.Parse()

	stmts, err := gormschema.New(*dialect).Load(&models.Image{})
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load gorm schema: %v\n", err)
		os.Exit(1)
	}
	io.WriteString(os.Stdout, stmts)
}
