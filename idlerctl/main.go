// Copyright 2026 The IdlerMeow Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use file except in compliance with the License.
// You may obtain a copy of the license at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Command idlerctl is the client of idlermeowd.  It uses subcommands;
// run without one it starts the full screen interface.
//
// Global flags
//
//	-a, --addr <url>        daemon address, default http://127.0.0.1:8321
//	-u, --user <user:pass>  user name & password for basic auth
//
// Subcommands
//
//	instances                      list instances
//	info <port>                    show one instance
//	status <port>                  show the status of an instance
//	create <port>                  create an instance
//	start|stop|restart <port>      control an instance
//	send <port> <command...>       send a console command
//	grant|revoke <port> <email>    edit the user list
//	ls <port> [path]               list a directory
//	cat <port> <path>              print a text file
//	get <port> <path> [file]       download a file
//	put <port> <dir> <file...>     upload files
//	rm <port> <path...>            delete files
//	zip <port> <name> <path...>    archive files
//	log [port]                     print the daemon log
//	console <port>                 attach to a console
//	ui                             full screen interface
//	hash-password [password]       print a bcrypt hash for the config
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/MoonlightPanel/IdlerMeow"
	"github.com/MoonlightPanel/IdlerMeow/idlerctl/util"
	"github.com/MoonlightPanel/IdlerMeow/rest"
)

var addr = "http://127.0.0.1:8321"
var auth = ""

func newClient() (*rest.Client, error) {
	client := rest.NewClient(nil, addr)
	if auth != "" {
		a := strings.SplitN(auth, ":", 2)
		if len(a) != 2 {
			return nil, errors.New("bad user:pass supplied")
		}
		client.SetAuth(a[0], a[1])
	}
	return client, nil
}

// portCmd builds a subcommand whose first argument is a port.
func portCmd(use, short string, args cobra.PositionalArgs,
	run func(c *rest.Client, port int, args []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			port, e := util.ParsePort(args[0])
			if e != nil {
				return e
			}
			c, e := newClient()
			if e != nil {
				return e
			}
			return run(c, port, args[1:])
		},
	}
}

func printMessage(msg string, e error) error {
	if e != nil {
		return e
	}
	fmt.Println(msg)
	return nil
}

func instancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "instances",
		Short: "List instances",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c, e := newClient()
			if e != nil {
				return e
			}
			items, e := c.Instances()
			if e != nil {
				return e
			}
			util.SortInstances(items)
			for _, s := range items {
				fmt.Println(util.Line(s))
			}
			return nil
		},
	}
}

func infoCmd() *cobra.Command {
	return portCmd("info <port>", "Show an instance", cobra.ExactArgs(1),
		func(c *rest.Client, port int, _ []string) error {
			s, e := c.Instance(port)
			if e != nil {
				return e
			}
			fmt.Printf("Port:      %d\n", s.Port)
			fmt.Printf("Status:    %s\n", util.Status(s))
			fmt.Printf("Command:   %s\n", s.StartupCommand)
			fmt.Printf("Owner:     %s\n", s.Owner)
			fmt.Printf("Users:     %s\n", strings.Join(s.Users, ", "))
			if s.CPU != "" || s.RAM != "" || s.Disk != "" {
				fmt.Printf("Resources: cpu=%s ram=%s disk=%s\n", s.CPU, s.RAM, s.Disk)
			}
			return nil
		})
}

func statusCmd() *cobra.Command {
	return portCmd("status <port>", "Show the status of an instance", cobra.ExactArgs(1),
		func(c *rest.Client, port int, _ []string) error {
			st, e := c.Status(port)
			if e != nil {
				return e
			}
			fmt.Println(st)
			return nil
		})
}

func createCmd() *cobra.Command {
	rec := struct {
		owner, command string
	}{}
	cmd := portCmd("create <port>", "Create an instance and download its server", cobra.ExactArgs(1),
		func(c *rest.Client, port int, _ []string) error {
			return c.Create(&idlermeow.Record{Port: port, Owner: rec.owner, StartupCommand: rec.command})
		})
	cmd.Flags().StringVar(&rec.owner, "owner", "", "owner e-mail")
	cmd.Flags().StringVar(&rec.command, "command", "", "startup command")
	return cmd
}

func controlCmds() []*cobra.Command {
	mk := func(name, short string, fn func(*rest.Client, int) (string, error)) *cobra.Command {
		return portCmd(name+" <port>", short, cobra.ExactArgs(1),
			func(c *rest.Client, port int, _ []string) error {
				return printMessage(fn(c, port))
			})
	}
	return []*cobra.Command{
		mk("start", "Start an instance", (*rest.Client).Start),
		mk("stop", "Stop an instance", (*rest.Client).Stop),
		mk("restart", "Restart an instance", (*rest.Client).Restart),
	}
}

func sendCmd() *cobra.Command {
	return portCmd("send <port> <command...>", "Send a console command", cobra.MinimumNArgs(2),
		func(c *rest.Client, port int, args []string) error {
			return c.SendCommand(port, strings.Join(args, " "))
		})
}

func userCmds() []*cobra.Command {
	return []*cobra.Command{
		portCmd("grant <port> <email>", "Add a user to an instance", cobra.ExactArgs(2),
			func(c *rest.Client, port int, args []string) error {
				return c.AddUser(port, args[0])
			}),
		portCmd("revoke <port> <email>", "Remove a user from an instance", cobra.ExactArgs(2),
			func(c *rest.Client, port int, args []string) error {
				return c.RemoveUser(port, args[0])
			}),
	}
}

func fileCmds() []*cobra.Command {
	return []*cobra.Command{
		portCmd("ls <port> [path]", "List a directory", cobra.RangeArgs(1, 2),
			func(c *rest.Client, port int, args []string) error {
				path := ""
				if len(args) > 0 {
					path = args[0]
				}
				fl, e := c.ListFiles(port, path)
				if e != nil {
					return e
				}
				for _, ent := range fl.Entries {
					name := ent.Name
					if ent.IsDirectory {
						name += "/"
					}
					fmt.Printf("%10d  %s  %s\n", ent.Size,
						ent.ModTime.Format(time.DateTime), name)
				}
				return nil
			}),
		portCmd("cat <port> <path>", "Print a text file", cobra.ExactArgs(2),
			func(c *rest.Client, port int, args []string) error {
				text, e := c.ReadFile(port, args[0])
				if e != nil {
					return e
				}
				fmt.Print(text)
				return nil
			}),
		portCmd("get <port> <path> [file]", "Download a file", cobra.RangeArgs(2, 3),
			func(c *rest.Client, port int, args []string) error {
				dest := filepath.Base(args[0])
				if len(args) > 1 {
					dest = args[1]
				}
				if dest == "-" {
					return c.Download(port, args[0], os.Stdout)
				}
				f, e := os.Create(dest)
				if e != nil {
					return e
				}
				if e = c.Download(port, args[0], f); e != nil {
					f.Close()
					os.Remove(dest)
					return e
				}
				return f.Close()
			}),
		portCmd("put <port> <dir> <file...>", "Upload files into a directory", cobra.MinimumNArgs(3),
			func(c *rest.Client, port int, args []string) error {
				for _, name := range args[1:] {
					f, e := os.Open(name)
					if e != nil {
						return e
					}
					e = c.Upload(port, args[0], filepath.Base(name), f)
					f.Close()
					if e != nil {
						return fmt.Errorf("%s: %w", name, e)
					}
				}
				return nil
			}),
		portCmd("rm <port> <path...>", "Delete files and directories", cobra.MinimumNArgs(2),
			func(c *rest.Client, port int, args []string) error {
				deleted, e := c.Delete(port, args)
				for _, d := range deleted {
					fmt.Println("deleted", d)
				}
				return e
			}),
		portCmd("zip <port> <name> <path...>", "Archive files into a ZIP", cobra.MinimumNArgs(3),
			func(c *rest.Client, port int, args []string) error {
				res, e := c.Archive(port, args[1:], args[0])
				if e != nil {
					return e
				}
				fmt.Printf("%s: %d added\n", res.Path, len(res.Added))
				for _, s := range res.Skipped {
					fmt.Println("skipped", s)
				}
				return nil
			}),
	}
}

func logCmd() *cobra.Command {
	follow := false
	cmd := &cobra.Command{
		Use:   "log [port]",
		Short: "Print the daemon log",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port := 0
			if len(args) == 1 {
				p, e := util.ParsePort(args[0])
				if e != nil {
					return e
				}
				port = p
			}
			c, e := newClient()
			if e != nil {
				return e
			}
			info, e := c.GetLog(port)
			if e != nil {
				return e
			}
			var last int64
			show := func() {
				for _, r := range info.Records {
					if r.ID > last {
						fmt.Printf("%s %s\n", r.Time.Format(time.StampMilli), r.Text)
						last = r.ID
					}
				}
			}
			show()
			if !follow {
				return nil
			}
			ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
			defer cancel()
			for ctx.Err() == nil {
				if info, e = c.WatchLog(ctx, port, info); e != nil {
					if ctx.Err() != nil {
						return nil
					}
					return e
				}
				show()
			}
			return nil
		},
	}
	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "keep printing new records")
	return cmd
}

func uiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ui",
		Short: "Full screen interface",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(0)
		},
	}
}

func consoleCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "console <port>",
		Short: "Attach to the console of an instance",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			port, e := util.ParsePort(args[0])
			if e != nil {
				return e
			}
			return runUI(port)
		},
	}
}

func hashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password [password]",
		Short: "Print a bcrypt hash for auth.passwordHash",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var pw string
			switch {
			case len(args) == 1:
				pw = args[0]
			case term.IsTerminal(int(os.Stdin.Fd())):
				fmt.Fprint(os.Stderr, "Password: ")
				b, e := term.ReadPassword(int(os.Stdin.Fd()))
				fmt.Fprintln(os.Stderr)
				if e != nil {
					return e
				}
				pw = string(b)
			default:
				line, e := bufio.NewReader(os.Stdin).ReadString('\n')
				if e != nil && e != io.EOF {
					return e
				}
				pw = strings.TrimRight(line, "\r\n")
			}
			if pw == "" {
				return errors.New("empty password")
			}
			h, e := rest.HashPassword(pw)
			if e != nil {
				return e
			}
			fmt.Println(h)
			return nil
		},
	}
}

func main() {
	root := &cobra.Command{
		Use:           "idlerctl",
		Short:         "Control an idlermeowd game server daemon",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUI(0)
		},
	}
	root.PersistentFlags().StringVarP(&addr, "addr", "a", addr, "idlermeowd address")
	root.PersistentFlags().StringVarP(&auth, "user", "u", auth, "user:pass authentication")

	root.AddCommand(instancesCmd(), infoCmd(), statusCmd(), createCmd(),
		sendCmd(), logCmd(), uiCmd(), consoleCmd(), hashCmd())
	root.AddCommand(controlCmds()...)
	root.AddCommand(userCmds()...)
	root.AddCommand(fileCmds()...)

	if e := root.Execute(); e != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", root.Name(), e)
		os.Exit(1)
	}
}
