package types

// Event:
//   type: one of
//     "PlayerServed"        // player: the new lot, seconds: opening timer
//     "BidUpdated"          // user, amount
//     "TimerTick"           // seconds remaining
//     "Commentary"          // reason: human-readable line
//     "PlayerSold"          // player, user, amount
//     "PlayerUnsold"        // player
//     "CompositionRejected" // player, user, reason; bidding reopens at base
//     "RTMOffered"          // user: eligible franchise owner, seconds: window
//     "RTMResolved"         // user, accepted
//     "ParticipantsChanged"
//     "AuctionCompleted"
//   player: Player | null
//   user: string
//   amount: number
//   seconds: number
//   reason: string
//   accepted: boolean
