package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"

	"slidedeck/importer"
	"slidedeck/model"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: pptxdump <file.pptx>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Printf("Error reading pptx: %v\n", err)
		os.Exit(1)
	}
	members, err := importer.ReadSlideMembers(data)
	if err != nil {
		fmt.Printf("Error opening pptx: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("%s: %s, %d slide members\n", os.Args[1], humanize.Bytes(uint64(len(data))), len(members))
	for _, m := range members {
		fmt.Printf("\n=== %s (slide %d) ===\n", m.Name, m.Number)
		if len(m.Text) == 0 {
			fmt.Println("  (no text runs)")
			continue
		}
		for i, run := range m.Text {
			fmt.Printf("  %3d  %s\n", i+1, strings.TrimSpace(run))
		}
	}

	res, err := importer.ImportPPTX(data, importer.Options{Defaults: model.English})
	if err != nil {
		fmt.Printf("\nImport failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Println("\n=== Imported titles ===")
	for i, s := range res.Presentation.Slides {
		fmt.Printf("  %3d  %s\n", i+1, s.Title)
	}
	for _, w := range res.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
}
