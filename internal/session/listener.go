package session

// Listener receives session events. Display and finish events drive the UI;
// progress events feed the console reporter.
type Listener interface {
	OnDisplay(index int, filename string)
	OnProgress(p Progress)
	OnFinished()
}

// Funcs adapts plain functions to a Listener. Nil fields are skipped.
type Funcs struct {
	Display  func(index int, filename string)
	Progress func(p Progress)
	Finished func()
}

func (f Funcs) OnDisplay(index int, filename string) {
	if f.Display != nil {
		f.Display(index, filename)
	}
}

func (f Funcs) OnProgress(p Progress) {
	if f.Progress != nil {
		f.Progress(p)
	}
}

func (f Funcs) OnFinished() {
	if f.Finished != nil {
		f.Finished()
	}
}

// Listeners fans every event out to ls in order.
func Listeners(ls ...Listener) Listener {
	var out multiListener
	for _, l := range ls {
		if l != nil {
			out = append(out, l)
		}
	}
	return out
}

type multiListener []Listener

func (m multiListener) OnDisplay(index int, filename string) {
	for _, l := range m {
		l.OnDisplay(index, filename)
	}
}

func (m multiListener) OnProgress(p Progress) {
	for _, l := range m {
		l.OnProgress(p)
	}
}

func (m multiListener) OnFinished() {
	for _, l := range m {
		l.OnFinished()
	}
}

type nopListener struct{}

func (nopListener) OnDisplay(int, string) {}
func (nopListener) OnProgress(Progress)   {}
func (nopListener) OnFinished()           {}
