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

package main

import (
	"io"
	"log"
	"os"

	"github.com/MoonlightPanel/IdlerMeow/idlerctl/ui"
)

// logFileEnv names a file to receive the UI's debug log.
const logFileEnv = "IDLERCTL_LOG"

func runUI(port int) error {
	client, e := newClient()
	if e != nil {
		return e
	}
	var w io.Writer = io.Discard
	if name := os.Getenv(logFileEnv); name != "" {
		f, e := os.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_APPEND, 0644)
		if e != nil {
			return e
		}
		defer f.Close()
		w = f
	}
	app := ui.NewApp(client, addr)
	app.SetLogger(log.New(w, "", log.LstdFlags))
	return app.Run(port)
}

/*
   Our screen has the following appearance:

    http://127.0.0.1:8321                                        IdlerMeow v1.0
         3 Instances      1 Online      0 Busy      2 Offline
   ____________________________________________________________________________
   25565  online    steve@example.com        java -Xms1G -Xmx1G -jar server.jar nogui
   25566  offline   -                        java -Xms1G -Xmx1G -jar server.jar nogui
   25567  offline   alex@example.com         java -Xmx4G -jar paper.jar nogui
   ____________________________________________________________________________
   [Q] Quit [H] Help [L] Log [C] Console [T] Stop [R] Restart
*/
