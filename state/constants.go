package state

import "time"

var (
	DefaultLinkCost = (uint32)(1)
	DefaultMtu      = (uint32)(1500)

	DefaultReportInterval = time.Second * 10

	// synthetic traffic generator defaults
	DefaultGeneratorInterval = time.Millisecond * 500
	DefaultGeneratorFlows    = 16
	GeneratorTtl             = (uint8)(64)

	// FlowCacheTTL bounds how long a multipath flow pinning entry is retained.
	FlowCacheTTL = time.Minute * 5
)
