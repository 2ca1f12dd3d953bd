package main

import (
	"bufio"
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/0xRadioAc7iv/go-carstore/core"
	"github.com/0xRadioAc7iv/go-carstore/internal/utils"
	"github.com/0xRadioAc7iv/go-carstore/pkg/carstore"
)

func main() {
	dir, width, verbose := utils.HandleCLIInputs()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}

	store, err := carstore.Open(*dir,
		carstore.WithRecordWidth(*width),
		carstore.WithLogger(core.NewTextLogger(level).Logger),
	)
	if err != nil {
		log.Fatal(err)
	}

	fmt.Printf("Using store at %v\n", store.DirectoryPath())
	fmt.Println("Type commands. 'help' for information or 'exit' to quit.")

	reader := bufio.NewReader(os.Stdin)

	for {
		fmt.Print("> ")

		line, err := reader.ReadString('\n')
		if err != nil {
			fmt.Println("input error:", err)
			return
		}

		line = strings.TrimSpace(line)

		if line == "" {
			continue
		}

		if line == "exit" {
			return
		}

		cmd, args, err := utils.SplitStringIntoCommandAndArguments(line)
		if err != nil {
			fmt.Println("parse error:", err)
			continue
		}

		resp, err := execute(store, cmd, args)
		if err != nil {
			fmt.Println("error:", err)
			continue
		}

		fmt.Println(resp)
	}
}
