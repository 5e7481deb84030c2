// Package core defines core types.
package core

// Protocol labels used for decode statistics, following the {protocol}
// naming of the printed truncation markers.
const (
	ProtoLLAP  = "llap"
	ProtoDDP   = "ddp"
	ProtoNBP   = "nbp"
	ProtoATP   = "atp"
	ProtoAARP  = "aarp"
	ProtoEIGRP = "eigrp"
)
