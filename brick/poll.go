package brick

import "fmt"

// Poll lets a source brick originate bursts. It returns how many packets
// were produced; zero is not a failure. Bricks that are not pollable return
// zero and no error.
func (b *Brick) Poll() (int, error) {
	if b.destroyed {
		return 0, fmt.Errorf("%w: poll of destroyed brick %q",
			ErrInvalidArgument, b.name)
	}

	if b.poller == nil {
		return 0, nil
	}

	n, err := b.poller.Poll()

	b.invoke(HookPosPoll, PollInfo{Count: n, Err: err})

	return n, err
}
