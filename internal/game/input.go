package game

import "github.com/hajimehoshi/ebiten/v2"

type action int

const (
	actionQuit action = iota
	actionReset
	actionPause
	actionToggleDots
	actionToggleFPS
	actionFullscreen
)

var keyBindings = map[ebiten.Key]action{
	ebiten.KeyEscape: actionQuit,
	ebiten.KeyQ:      actionQuit,
	ebiten.KeyR:      actionReset,
	ebiten.KeySpace:  actionPause,
	ebiten.KeyD:      actionToggleDots,
	ebiten.KeyF:      actionToggleFPS,
	ebiten.KeyF11:    actionFullscreen,
}

// perform runs a key action. Quitting returns ebiten.Termination, which
// ends RunGame without an error.
func (g *Game) perform(a action) error {
	switch a {
	case actionQuit:
		g.log.Info("quit requested")
		return ebiten.Termination
	case actionReset:
		g.state.Reset()
		g.log.Info("scene reset")
	case actionPause:
		g.state.SetPaused(!g.state.Paused())
		g.log.WithField("paused", g.state.Paused()).Info("spawning toggled")
	case actionToggleDots:
		g.log.WithField("dots", g.renderer.ToggleLandmarkDots()).Debug("landmark dots toggled")
	case actionToggleFPS:
		g.showFPS = !g.showFPS
	case actionFullscreen:
		ebiten.SetFullscreen(!ebiten.IsFullscreen())
	}
	return nil
}
