package usecase

// BuildOutboundMessage is exported for testing
var BuildOutboundMessage = buildOutboundMessage

// ComposeText is exported for testing
var ComposeText = composeText
