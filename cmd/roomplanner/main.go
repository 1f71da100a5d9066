/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except
 * in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the
 *  specific language governing permissions and limitations under the License.
 */

package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"roomplanner/internal/config"
	"roomplanner/internal/crash"
	applog "roomplanner/internal/log"
	"roomplanner/internal/version"
)

func usage() {
	fmt.Println("Room Planner")
	fmt.Printf("Version: %s\n", version.String())
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  roomplanner version|-v|--version            Show version")
	fmt.Println("  roomplanner new <name> [w l h]               Create a design (room size in meters, default 4 5 3)")
	fmt.Println("  roomplanner list [owner]                     List stored designs")
	fmt.Println("  roomplanner show <id>                        Print a design and its placements")
	fmt.Println("  roomplanner place <id> <TYPE> <x> <y> [deg]  Place stock furniture at editor pixel x,y")
	fmt.Println("  roomplanner scene <id> [yaw pitch zoom]      Build the 3D scene headlessly and log it")
	fmt.Println("  roomplanner export <id> png|pdf|svg|web|print <out>")
	fmt.Println("                                               Export a floor plan (web/print write a folder)")
	fmt.Println("  roomplanner delete <id>                      Delete a design (a copy stays in backups)")
	fmt.Println("  roomplanner serve                            Serve the design API (backend.addr)")
	fmt.Println("  roomplanner pull <url> <id>                  Copy a design from a server into the library")
	fmt.Println("  roomplanner push <url> <id>                  Copy a local design to a server")
	fmt.Println("  roomplanner config show|path|set-db-password <pw>|forget-db-password")
	fmt.Println("  roomplanner ui [<id>]                        Launch desktop UI (build with -tags fyne for full UI)")
}

// cli carries what every command needs.
type cli struct {
	ctx  context.Context
	cfg  config.AppConfig
	pw   string
	log  *slog.Logger
	sess *crash.Session
}

func main() {
	applog.Init(applog.FromEnv())
	cfg, pw, err := config.Load()
	if err != nil {
		applog.WithComponent("cli").Error("load config failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
	applog.Init(cfg.LogOptions())
	c := &cli{ctx: context.Background(), cfg: cfg, pw: pw, log: applog.WithComponent("cli"), sess: &crash.Session{Root: cfg.General.DataDir}}
	defer crash.Recover(c.sess)

	args := os.Args
	c.log.Debug("start", slog.Int("args", len(args)))
	if len(args) < 2 {
		usage()
		return
	}
	cmd, rest := args[1], args[2:]
	var run func([]string) error
	switch cmd {
	case "version", "--version", "-v":
		fmt.Println("Room Planner")
		fmt.Println(version.String())
		return
	case "new":
		run = c.cmdNew
	case "list":
		run = c.cmdList
	case "show":
		run = c.cmdShow
	case "place":
		run = c.cmdPlace
	case "scene":
		run = c.cmdScene
	case "export":
		run = c.cmdExport
	case "delete":
		run = c.cmdDelete
	case "serve":
		run = c.cmdServe
	case "pull":
		run = c.cmdPull
	case "push":
		run = c.cmdPush
	case "config":
		run = c.cmdConfig
	case "ui":
		run = c.cmdUI
	default:
		usage()
		os.Exit(2)
	}
	if err := run(rest); err != nil {
		if ue, ok := err.(usageError); ok {
			fmt.Println(string(ue))
			usage()
			os.Exit(2)
		}
		c.log.Error(cmd+" failed", slog.Any("err", err))
		fmt.Println("Error:", err)
		os.Exit(1)
	}
}

type usageError string

func (e usageError) Error() string { return string(e) }
