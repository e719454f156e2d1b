package client

import (
	"fmt"
	"time"

	"github.com/tomz197/swarm/internal/loop/config"
	"github.com/tomz197/swarm/internal/loop/server"
	"github.com/tomz197/swarm/internal/loop/view"
)

// drawFrame draws the current frame.
func (c *Client) drawFrame() error {
	// On game state or inactivity transitions, do a full terminal clear
	// so UI elements from the previous state don't persist on screen.
	stateChanged := c.state.GameState != c.state.prevGameState
	inactiveChanged := c.state.isInactive != c.state.wasInactive
	if stateChanged || inactiveChanged {
		c.chunkWriter.WriteString("\033[H\033[2J")
		c.canvas.ForceRedraw()
		c.state.prevGameState = c.state.GameState
		c.state.wasInactive = c.state.isInactive
	}

	c.canvas.Clear()

	snapshot := c.server.GetSnapshot()

	// The swarm keeps running behind the title and shutdown screens.
	highlight := view.NoHighlight
	if c.handle.IsPlayer() {
		highlight = c.handle.Slot
	}
	view.DrawSwarm(c.canvas, snapshot.Snapshot, highlight)

	c.canvas.Render(c.chunkWriter)

	// Draw border when terminal exceeds max render resolution
	c.canvas.RenderBorder(c.chunkWriter)

	if c.state.GameState == GameStatePlaying && !c.state.isInactive {
		c.drawPlayerNames(snapshot)
	}

	c.drawUI(snapshot)

	return c.chunkWriter.Flush()
}

// drawUI draws the text overlay for the current state.
func (c *Client) drawUI(snapshot *server.Snapshot) {
	centerX := c.canvas.TerminalWidth() / 2
	centerY := c.canvas.TerminalHeight() / 2

	if c.state.GameState == GameStateShutdown {
		c.drawShutdownScreen(centerX, centerY)
		return
	}

	if c.state.isInactive {
		c.drawInactivityScreen(centerX, centerY)
		return
	}

	switch c.state.GameState {
	case GameStatePlaying:
		c.drawPlayingHUD(snapshot)
	case GameStateStart:
		c.drawStartScreen(centerX, centerY)
	}
}

// writeCentered writes s centred on column centerX and marks the cells dirty
// so the canvas repaints them once the text is gone.
func (c *Client) writeCentered(centerX, row int, s string) {
	col := max(centerX-len(s)/2, 1)
	c.chunkWriter.WriteAt(col, row, s)
	c.canvas.MarkTextDirty(col, row, len(s))
}

// drawInactivityScreen draws the inactivity warning screen.
func (c *Client) drawInactivityScreen(centerX, centerY int) {
	c.writeCentered(centerX, centerY-2, "INACTIVITY WARNING")

	msg := fmt.Sprintf(
		"You have been inactive for too long. You will be disconnected in %d seconds.",
		int(config.InactivityDisconnectUser-time.Since(c.lastInput).Seconds()),
	)
	c.writeCentered(centerX, centerY, msg)
	c.writeCentered(centerX, centerY+2, "Press any key to continue")
}

// drawStartScreen draws the title screen.
func (c *Client) drawStartScreen(centerX, centerY int) {
	// ASCII art title (figlet "small" font)
	titleArt := []string{
		`  _____      ___   ___ __  __ `,
		` / __\ \    / /_\ | _ \  \/  |`,
		` \__ \\ \/\/ / _ \|   / |\/| |`,
		` |___/ \_/\_/_/ \_\_|_\_|  |_|`,
		`                              `,
	}

	titleStartY := centerY - 8
	for i, line := range titleArt {
		c.writeCentered(centerX, titleStartY+i, line)
	}

	c.writeCentered(centerX, titleStartY+len(titleArt)+1, "~ Steer your swarm over SSH ~")

	var role string
	if c.handle.IsPlayer() {
		role = "You are " + view.PlayerLabel(c.handle.Slot)
	} else {
		role = "All player slots are taken, you are spectating"
	}
	c.writeCentered(centerX, titleStartY+len(titleArt)+2, role)

	controlsY := titleStartY + len(titleArt) + 4
	c.writeCentered(centerX, controlsY, "Controls")

	controlLines := []string{
		"W A S D / arrows  . .  Steer cursor",
		"SPACE  . . . . .  Restart the swarm",
		"Q  . . . . . . . . . . . . . . Quit",
	}
	for i, line := range controlLines {
		c.writeCentered(centerX, controlsY+1+i, line)
	}

	// Blinking start prompt
	if time.Now().UnixMilli()/600%2 == 0 {
		c.writeCentered(centerX, controlsY+len(controlLines)+2, ">>  Press SPACE to Start  <<")
	}

	// GitHub link (OSC 8 clickable hyperlink)
	ghURL := "https://github.com/tomz197/swarm"
	ghLabel := "github.com/tomz197/swarm"
	ghLine := fmt.Sprintf("\033]8;;%s\033\\%s\033]8;;\033\\", ghURL, ghLabel)
	row := controlsY + len(controlLines) + 4
	col := max(centerX-len(ghLabel)/2, 1)
	c.chunkWriter.WriteAt(col, row, ghLine)
	c.canvas.MarkTextDirty(col, row, len(ghLabel))
}

// drawPlayingHUD draws tick diagnostics, the session's role and any notice.
func (c *Client) drawPlayingHUD(snapshot *server.Snapshot) {
	var status string
	if c.handle.IsPlayer() {
		status = fmt.Sprintf("you are %-20s", view.PlayerLabel(c.handle.Slot))
	} else {
		status = fmt.Sprintf("%-24s", "spectating")
	}
	status += fmt.Sprintf("  sessions: %-4d", snapshot.Players)

	view.DrawHUD(c.chunkWriter, c.canvas, snapshot.Snapshot, view.HUD{
		FPS:    c.state.fps,
		Status: status,
	})

	if c.state.notice != "" {
		c.writeCentered(c.canvas.TerminalWidth()/2, 1, fmt.Sprintf("  %s  ", c.state.notice))
	}
}

// drawShutdownScreen draws the server shutdown notification screen.
func (c *Client) drawShutdownScreen(centerX, centerY int) {
	c.writeCentered(centerX, centerY-3, "SERVER SHUTTING DOWN")
	c.writeCentered(centerX, centerY-1, "The server is restarting for maintenance.")
	c.writeCentered(centerX, centerY, "Please reconnect in a moment.")

	remaining := int(c.state.shutdownTimer) + 1
	c.writeCentered(centerX, centerY+2, fmt.Sprintf("Disconnecting in %d seconds...", remaining))
	c.writeCentered(centerX, centerY+4, "Press Q to disconnect now")
}

// drawPlayerNames draws usernames above the cursors of other players.
// Marks the drawn cells as dirty so the canvas overwrites them next frame,
// preventing stale name text from persisting when cursors move.
func (c *Client) drawPlayerNames(snapshot *server.Snapshot) {
	termWidth := c.canvas.TerminalWidth()
	termHeight := c.canvas.TerminalHeight()

	for _, cur := range snapshot.Cursors {
		if cur.Owner == c.handle.Slot || cur.Owner >= len(snapshot.SlotNames) {
			continue
		}
		name := snapshot.SlotNames[cur.Owner]
		if name == "" {
			continue
		}

		col, row := c.canvas.LogicalToTerminal(
			float64(cur.Position.X),
			float64(cur.Position.Y)-view.HighlightCursorRadius,
		)
		col -= len(name) / 2

		// Clamp to the canvas, skip when off screen
		if row < 1 || row > termHeight {
			continue
		}
		col = max(col, 1)
		if col+len(name)-1 > termWidth {
			col = termWidth - len(name) + 1
		}
		if col < 1 {
			continue
		}

		c.chunkWriter.WriteAt(col, row, name)
		c.canvas.MarkTextDirty(col, row, len(name))
	}
}
