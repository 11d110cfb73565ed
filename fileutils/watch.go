package fileutils

import (
	"context"
)

// WatchFile checks path on every tick and emits when its content hash
// changes. Read errors are passed to onErr and do not reset the last hash.
// The returned channel is closed when ctx is done or ticks stops.
func WatchFile(ctx context.Context, path string, ticks <-chan struct{}, onErr func(err error)) (<-chan struct{}, error) {
	lastHash, err := ComputeFileHash(path)
	if err != nil {
		return nil, err
	}

	ch := make(chan struct{})
	go func() {
		defer close(ch)
		for {
			select {
			case <-ctx.Done():
				return
			case _, ok := <-ticks:
				if !ok {
					return
				}
				newHash, err := ComputeFileHash(path)
				if err != nil {
					onErr(err)
					continue
				}
				if newHash == lastHash {
					continue
				}
				lastHash = newHash

				select {
				case ch <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return ch, nil
}
