package dlt

// Control message service ids defined by the protocol.
const (
	ServiceSetLogLevel                uint32 = 0x01
	ServiceSetTraceStatus             uint32 = 0x02
	ServiceGetLogInfo                 uint32 = 0x03
	ServiceGetDefaultLogLevel         uint32 = 0x04
	ServiceStoreConfiguration         uint32 = 0x05
	ServiceResetToFactoryDefault      uint32 = 0x06
	ServiceSetMessageFiltering        uint32 = 0x0A
	ServiceSetDefaultLogLevel         uint32 = 0x11
	ServiceSetDefaultTraceStatus      uint32 = 0x12
	ServiceGetSoftwareVersion         uint32 = 0x13
	ServiceGetDefaultTraceStatus      uint32 = 0x15
	ServiceGetLogChannelNames         uint32 = 0x17
	ServiceGetTraceStatus             uint32 = 0x1F
	ServiceSetLogChannelAssignment    uint32 = 0x20
	ServiceSetLogChannelThreshold     uint32 = 0x21
	ServiceGetLogChannelThreshold     uint32 = 0x22
	ServiceBufferOverflowNotification uint32 = 0x23
	ServiceSyncTimeStamp              uint32 = 0x24

	// Ids from this value upward address software component injections.
	ServiceCallSWCInjectionMin uint32 = 0xFFF
)

var serviceNames = map[uint32]string{
	ServiceSetLogLevel:                "SetLogLevel",
	ServiceSetTraceStatus:             "SetTraceStatus",
	ServiceGetLogInfo:                 "GetLogInfo",
	ServiceGetDefaultLogLevel:         "GetDefaultLogLevel",
	ServiceStoreConfiguration:         "StoreConfiguration",
	ServiceResetToFactoryDefault:      "ResetToFactoryDefault",
	ServiceSetMessageFiltering:        "SetMessageFiltering",
	ServiceSetDefaultLogLevel:         "SetDefaultLogLevel",
	ServiceSetDefaultTraceStatus:      "SetDefaultTraceStatus",
	ServiceGetSoftwareVersion:         "GetSoftwareVersion",
	ServiceGetDefaultTraceStatus:      "GetDefaultTraceStatus",
	ServiceGetLogChannelNames:         "GetLogChannelNames",
	ServiceGetTraceStatus:             "GetTraceStatus",
	ServiceSetLogChannelAssignment:    "SetLogChannelAssignment",
	ServiceSetLogChannelThreshold:     "SetLogChannelThreshold",
	ServiceGetLogChannelThreshold:     "GetLogChannelThreshold",
	ServiceBufferOverflowNotification: "BufferOverflowNotification",
	ServiceSyncTimeStamp:              "SyncTimeStamp",
}

// ServiceName maps a control service id to its protocol name. The second
// return value is false for unassigned ids.
func ServiceName(serviceID uint32) (string, bool) {
	if name, ok := serviceNames[serviceID]; ok {
		return name, true
	}
	if serviceID >= ServiceCallSWCInjectionMin {
		return "CallSWCInjection", true
	}
	return "", false
}
