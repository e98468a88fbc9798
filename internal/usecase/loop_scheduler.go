package usecase

import (
	"time"

	"ProvinceMap-App/internal/domain/service"
	"ProvinceMap-App/internal/eventloop"
)

// loopScheduler はeventloop.Loopをservice.Schedulerとして使うためのアダプタ
type loopScheduler struct {
	loop *eventloop.Loop
}

func (s loopScheduler) AfterFunc(d time.Duration, f func()) service.Timer {
	return s.loop.AfterFunc(d, f)
}

func (s loopScheduler) Post(f func()) bool {
	return s.loop.Post(f)
}
