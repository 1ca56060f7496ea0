package protocol

import (
	"fmt"

	"github.com/skybound-dev/ifconnect/pkg/wirebuf"
	"github.com/skybound-dev/ifconnect/pkg/wiretype"
)

// InvokeArg is a single named string argument to an invoke (run) request.
type InvokeArg struct {
	Name  string
	Value string
}

// EncodeRead builds a read request: [i32 command_id][u8 flag=0]. 5 bytes.
func EncodeRead(id CommandID) []byte {
	w := wirebuf.NewWriter(5)
	w.WriteInt32(int32(id))
	w.WriteUint8(uint8(FlagRead))
	return w.Bytes()
}

// EncodeManifestRequest builds the manifest-fetch request, a read request
// against the ManifestCommandID sentinel.
func EncodeManifestRequest() []byte {
	return EncodeRead(ManifestCommandID)
}

// EncodeWrite builds a write request for a scalar wire type:
// [i32 command_id][u8 flag=1][value encoded per type].
func EncodeWrite(id CommandID, v wiretype.Value) ([]byte, error) {
	w := wirebuf.NewWriter(9)
	w.WriteInt32(int32(id))
	w.WriteUint8(uint8(FlagWrite))
	if err := wiretype.Encode(w, v); err != nil {
		return nil, fmt.Errorf("protocol: encode write request: %w", err)
	}
	return w.Bytes(), nil
}

// EncodeInvoke builds an invoke request for a command-type manifest entry:
//
//	[i32 command_id][u8 flag=1][i32 n_args]
//	then for each arg: [i32 name_len][name bytes][i32 value_len][value bytes]
func EncodeInvoke(id CommandID, args []InvokeArg) []byte {
	w := wirebuf.NewWriter(9 + 16*len(args))
	w.WriteInt32(int32(id))
	w.WriteUint8(uint8(FlagWrite))
	w.WriteInt32(int32(len(args)))
	for _, a := range args {
		w.WriteString(a.Name)
		w.WriteString(a.Value)
	}
	return w.Bytes()
}
