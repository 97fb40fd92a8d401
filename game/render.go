package game

import (
	"fmt"

	gui "github.com/gen2brain/raylib-go/raygui"
	rl "github.com/gen2brain/raylib-go/raylib"

	"github.com/pthm-cable/muncher/maze"
)

// restartDelayFrames is how long the terminal banner stays up before the next
// episode starts automatically.
const restartDelayFrames = 90

var ghostColors = []rl.Color{
	{R: 230, G: 60, B: 60, A: 255},
	{R: 250, G: 150, B: 200, A: 255},
	{R: 250, G: 160, B: 60, A: 255},
	{R: 80, G: 220, B: 220, A: 255},
}

// Update advances the game for one frame of the graphical loop: input, then
// stepsPerUpd simulation ticks, then auto-restart after termination.
func (g *Game) Update() {
	g.handleInput()

	if g.paused {
		return
	}

	if g.state == StateTerminated {
		g.restartWait++
		if g.restartWait >= restartDelayFrames {
			g.restartWait = 0
			g.params = g.schedule.ParamsFor(g.episode + 1)
			g.Start()
		}
		return
	}

	for i := 0; i < g.stepsPerUpd; i++ {
		if g.TickOnce() {
			break
		}
	}
}

// Draw renders the maze, entities, HUD and control panel.
func (g *Game) Draw() {
	rl.BeginDrawing()
	rl.ClearBackground(rl.Black)

	cell := int32(g.cfg.Screen.CellSize)
	half := float32(cell) / 2

	for r := 0; r < g.grid.Height(); r++ {
		for c := 0; c < g.grid.Width(); c++ {
			x := int32(c) * cell
			y := int32(r) * cell
			switch g.grid.At(c, r) {
			case maze.CellWall:
				rl.DrawRectangle(x, y, cell, cell, rl.Color{R: 30, G: 40, B: 140, A: 255})
			case maze.CellDoor:
				rl.DrawRectangle(x, y+cell/2-2, cell, 4, rl.Color{R: 230, G: 180, B: 200, A: 255})
			}
			if g.HasPellet(c, r) {
				cx := float32(x) + half
				cy := float32(y) + half
				if g.grid.At(c, r) == maze.CellPower {
					rl.DrawCircle(int32(cx), int32(cy), float32(cell)/4, rl.Color{R: 255, G: 230, B: 180, A: 255})
				} else {
					rl.DrawCircle(int32(cx), int32(cy), float32(cell)/10, rl.Color{R: 230, G: 200, B: 160, A: 255})
				}
			}
		}
	}

	snap := g.Snapshot()

	for i, gh := range snap.Ghosts {
		color := ghostColors[i%len(ghostColors)]
		if gh.Vulnerable {
			color = rl.Color{R: 60, G: 80, B: 230, A: 255}
		}
		px := int32(float32(gh.Pos.X)*float32(cell) + half)
		py := int32(float32(gh.Pos.Y)*float32(cell) + half)
		rl.DrawCircle(px, py, half*0.8, color)
	}

	lx := int32(float32(snap.LearnerPos.X)*float32(cell) + half)
	ly := int32(float32(snap.LearnerPos.Y)*float32(cell) + half)
	rl.DrawCircle(lx, ly, half*0.8, rl.Yellow)

	g.drawHUD(snap)

	rl.EndDrawing()
}

func (g *Game) drawHUD(snap Snapshot) {
	cell := int32(g.cfg.Screen.CellSize)
	hudY := int32(g.grid.Height()) * cell
	width := int32(g.grid.Width()) * cell

	rl.DrawRectangle(0, hudY, width, int32(g.cfg.Screen.HUDHeight), rl.Color{R: 20, G: 20, B: 28, A: 255})

	rl.DrawText(
		fmt.Sprintf("Episode: %d | Tick: %d | Score: %d | Pellets left: %d", snap.Episode, snap.Tick, snap.Score, snap.Remaining),
		10, hudY+8, 16, rl.White,
	)
	rl.DrawText(
		fmt.Sprintf("Mode: %s | Eps: %.3f | States: %d | Speed: %dx | FPS: %d", g.mode, snap.Epsilon, snap.States, g.stepsPerUpd, rl.GetFPS()),
		10, hudY+30, 14, rl.LightGray,
	)

	if g.paused {
		rl.DrawText("PAUSED", 10, hudY+50, 14, rl.Yellow)
	} else if snap.State == StateTerminated {
		rl.DrawText(fmt.Sprintf("Episode over: %s", snap.Cause), 10, hudY+50, 14, rl.Yellow)
	}

	// Control panel
	bx := float32(width) - 200
	if gui.Button(rl.Rectangle{X: bx, Y: float32(hudY) + 8, Width: 90, Height: 24}, pauseLabel(g.paused)) {
		g.paused = !g.paused
	}
	if gui.Button(rl.Rectangle{X: bx + 100, Y: float32(hudY) + 8, Width: 90, Height: 24}, "Restart") {
		g.Start()
	}
	speed := gui.SliderBar(
		rl.Rectangle{X: bx, Y: float32(hudY) + 42, Width: 190, Height: 16},
		"1x", "64x",
		float32(g.stepsPerUpd), 1, 64,
	)
	g.stepsPerUpd = int(speed)
	if g.stepsPerUpd < 1 {
		g.stepsPerUpd = 1
	}

	rl.DrawText("Arrows: steer (manual) | M: mode | Space: pause | R: restart | ,/.: speed", 10, hudY+int32(g.cfg.Screen.HUDHeight)-20, 12, rl.Gray)
}

func pauseLabel(paused bool) string {
	if paused {
		return "Resume"
	}
	return "Pause"
}
