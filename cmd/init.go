// buildit init [name], buildit new [path]
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/qobs-build/buildit/internal/builder"
	"github.com/qobs-build/buildit/internal/msg"
	"github.com/spf13/cobra"
)

func writefile(content string, elem ...string) {
	path := filepath.Join(elem...)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err = os.WriteFile(path, []byte(content), 0o644); err != nil {
			msg.Fatal("create file %s: %v", path, err)
		}
		fmt.Fprintf(msg.Output, "%s file: %s\n", color.HiGreenString("Created"), filepath.ToSlash(path))
	}
}

func mkdir(elem ...string) {
	path := filepath.Join(elem...)
	if err := os.MkdirAll(path, 0o755); err != nil {
		msg.Fatal("mkdir %s: %v", path, err)
	}
}

// projectName turns a directory name into something CMake accepts as a target name
func projectName(name string) string {
	name = strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
			return r
		}
		return '_'
	}, name)
	if name == "" {
		return "app"
	}
	return name
}

// initIn initializes a CMake project in an existing specified directory
func initIn(dir, name string) {
	name = projectName(name)

	// CMakeLists.txt
	writefile(`cmake_minimum_required(VERSION 3.16)
project(`+name+` C)

set(CMAKE_C_STANDARD 11)
set(CMAKE_RUNTIME_OUTPUT_DIRECTORY ${CMAKE_BINARY_DIR})

add_executable(`+name+` src/main.c)
`, dir, builder.DefaultDescriptor)

	mkdir(dir, "src")

	// src/main.c
	writefile(`#include <stdio.h>

int main(int argc, char **argv) {
    puts("Hello, World!");
    for (int i = 1; i < argc; i++) {
        printf("arg %d: %s\n", i, argv[i]);
    }
    return 0;
}
`, dir, "src", "main.c")

	// .gitignore
	writefile(builder.DefaultBuildDir+`/
`, dir, ".gitignore")

	prefix := ""
	if filepath.Clean(dir) != "." {
		prefix = "cd " + filepath.ToSlash(dir) + " && "
	}
	fmt.Fprintf(msg.Output, "You can now do %s to build, then %s to run.\n",
		color.HiCyanString(prefix+"buildit"),
		color.HiCyanString("runit"))
}

var initCmd = &cobra.Command{
	Use:   "init [name]",
	Short: "Create a new CMake project in the current directory",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		name := ""
		if len(args) > 0 {
			name = args[0]
		} else if abs, err := filepath.Abs(flagDirectory); err == nil {
			name = filepath.Base(abs)
		}
		initIn(flagDirectory, name)
	},
}

var newCmd = &cobra.Command{
	Use:   "new [path]",
	Short: "Create a new CMake project in a new directory",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		dir := filepath.Join(flagDirectory, args[0])
		mkdir(dir)
		initIn(dir, filepath.Base(dir))
	},
}

func init() {
	// buildit init subcommand
	buildCmd.AddCommand(initCmd)

	// buildit new subcommand
	buildCmd.AddCommand(newCmd)
}
