package game

import (
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/muncher/components"
)

// handleInput processes keyboard state for the graphical loop.
func (g *Game) handleInput() {
	if rl.IsKeyPressed(rl.KeySpace) {
		g.paused = !g.paused
	}
	if rl.IsKeyPressed(rl.KeyM) {
		if g.mode == ModeManual {
			g.mode = ModeLearn
		} else {
			g.mode = ModeManual
		}
	}
	if rl.IsKeyPressed(rl.KeyR) {
		g.Start()
	}
	if rl.IsKeyPressed(rl.KeyComma) && g.stepsPerUpd > 1 {
		g.stepsPerUpd /= 2
	}
	if rl.IsKeyPressed(rl.KeyPeriod) && g.stepsPerUpd < 64 {
		g.stepsPerUpd *= 2
	}

	switch {
	case rl.IsKeyDown(rl.KeyUp):
		g.manualIntent = components.DirUp
	case rl.IsKeyDown(rl.KeyDown):
		g.manualIntent = components.DirDown
	case rl.IsKeyDown(rl.KeyLeft):
		g.manualIntent = components.DirLeft
	case rl.IsKeyDown(rl.KeyRight):
		g.manualIntent = components.DirRight
	}
}
