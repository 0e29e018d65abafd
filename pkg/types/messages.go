package types

// Client -> Server
// All messages ride the websocket opened at /ws?room=CODE&user=NAME; joining
// is implicit in the connection, leaving in closing it.
//
// choose-team:
//   team: string // franchise name or slug, e.g. "csk" or "Chennai Super Kings"
//
// set-settings (host only):
//   rtm_enabled: boolean
//   rtm_per_team: number // 0..5, locked once the auction starts
//
// start (host only): {}
//
// bid: {} // amount is implied: current bid plus the tier increment
//
// rtm-accept: {} // only valid for the user named in the open RTM window
//
// advance-now: {} // skip the remaining countdown

// Server -> Client
// Snapshot:
//   type: "Snapshot"
//   snapshot:
//     version: number // monotonic per room, for client-side reordering
//     room: string
//     phase: "lobby" | "bidding" | "rtm" | "done"
//     started: boolean
//     host: string
//     settings: { rtm_enabled, rtm_per_team }
//     player: Player | null // the lot on the block
//     current_bid: number
//     current_bidder: string
//     timer: number // seconds remaining
//     rtm: { eligible_user, window } | null
//     commentary: CommentaryEntry[] // most recent last, bounded
//     participants: Participant[] // user, team, budget, rtm, players
//   events: Event[] // what produced this snapshot, e.g. "PlayerSold"
//
// Error:
//   type: "Error"
//   error: string // directed at the offending client only
