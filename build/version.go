package build

// ClientVersion is reported to relays in the User-Agent header.
const ClientVersion = "0.1.0"

// UserAgent identifies this client on the wire.
const UserAgent = "drandlite/" + ClientVersion
