/*
main.go

Copyright © 2026 Code Monkey Cybersecurity
Contact: git@cybermonkey.net.au

This file is part of Steward.

This software is dual-licensed under the Do No Harm License
and the GNU Affero General Public License v3 (AGPL-3.0-or-later).
You may use, modify, and distribute it under the terms of either license.

See LICENSE.agpl and LICENSE.dnh for full details.
*/
package main

import (
	"github.com/CodeMonkeyCybersecurity/steward/cmd"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/logger"
	"github.com/CodeMonkeyCybersecurity/steward/pkg/telemetry"
)

func main() {
	logger.InitializeWithFallback()
	log := logger.L()
	if log == nil {
		panic("logger.L() returned nil — logger not initialized")
	}

	if err := telemetry.Init("steward"); err != nil {
		log.Warn("Telemetry disabled: " + err.Error())
	}

	cmd.Execute()
}
