package ir

// Version is the philo release, reported by --version.
const Version = "0.1.0"
