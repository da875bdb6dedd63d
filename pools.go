package sembuf

import (
	"github.com/gostdlib/base/concurrency/sync"
	"github.com/gostdlib/base/context"
)

// marshalBuffers holds scratch buffers for Marshal so that serializing in a
// loop does not allocate a fresh buffer per call.
var marshalBuffers = sync.NewPool[*[]byte](
	context.Background(),
	"marshalBuffers",
	func() *[]byte {
		b := make([]byte, 0, 512)
		return &b
	},
	sync.WithBuffer(100),
)
