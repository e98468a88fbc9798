package usecase

import (
	"github.com/paulmach/orb"

	"ProvinceMap-App/internal/domain/model"
)

// remoteCamera はクライアントの地図カメラの写し。
// 移動要求はCameraCommandとして積み、クライアントがmoveendで現在位置を報告する。
// ループ上でのみ使う
type remoteCamera struct {
	center model.LatLng
	zoom   int
	seq    uint64
	last   *model.CameraCommand
}

func newRemoteCamera(center model.LatLng, zoom int) *remoteCamera {
	return &remoteCamera{center: center, zoom: zoom}
}

func (c *remoteCamera) Center() model.LatLng {
	return c.center
}

func (c *remoteCamera) FitBounds(bounds orb.Bound, padding, maxZoom int) {
	c.seq++
	b := bounds
	c.last = &model.CameraCommand{
		Seq:     c.seq,
		Kind:    model.CameraFitBounds,
		Bounds:  &b,
		Padding: padding,
		MaxZoom: maxZoom,
	}
}

func (c *remoteCamera) FlyTo(center model.LatLng, zoom int) {
	c.seq++
	p := center
	c.last = &model.CameraCommand{
		Seq:    c.seq,
		Kind:   model.CameraFlyTo,
		Center: &p,
		Zoom:   zoom,
	}
}

// moved はクライアントが報告したカメラ位置を反映する
func (c *remoteCamera) moved(center model.LatLng, zoom int) {
	c.center = center
	if zoom > 0 {
		c.zoom = zoom
	}
}

// Settled はmoveendが届かなかった移動の行き先を現在位置とする
func (c *remoteCamera) Settled(center model.LatLng) {
	c.center = center
}

// lastCommand は最後に出した移動要求のコピーを返す
func (c *remoteCamera) lastCommand() *model.CameraCommand {
	if c.last == nil {
		return nil
	}
	cmd := *c.last
	return &cmd
}
