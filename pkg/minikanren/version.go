package minikanren

// Version is the current version of the gokanren engine.
const Version = "0.3.0"
