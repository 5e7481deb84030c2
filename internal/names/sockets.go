package names

import (
	"strconv"

	"firestige.xyz/atalkdump/internal/core"
)

var socketNames = map[uint8]string{
	core.SocketRTMP: "rtmp", // routing table maintenance
	core.SocketNBP:  "nis",  // name information socket
	core.SocketEcho: "echo", // echo protocol
	core.SocketZIP:  "zip",  // zone information protocol
}

// Socket returns the symbolic name of a well-known socket, or its number
// when the socket is unknown or numeric output is requested.
func Socket(skt uint8, numeric bool) string {
	if !numeric {
		if name, ok := socketNames[skt]; ok {
			return name
		}
	}
	return strconv.Itoa(int(skt))
}
