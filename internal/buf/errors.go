package buf

import "errors"

// ErrOverflow is signalled when a read would cross the end of the
// configured byte range. It is the only error the codec itself raises;
// everything else (bad UTF-8, an unrecognized variant tag, ...) is a
// semantic judgment made by the layer above and reported as Malformed
// there, not here.
var ErrOverflow = errors.New("buf: overflow")
