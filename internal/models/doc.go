// Package models defines the core domain models for the volunteer events app.
//
// # Models
//
//   - Event: A scheduled volunteer activity with a location, capacity and roster
//   - Position: Latitude/longitude pair in degrees
//   - User: A registered person; organizers and volunteers are both users
//
// The remote API owns every record. The client holds read-only copies of
// users and mutates events only by appending to an event's roster.
//
// # Design Principles
//
//  1. **IDs, not pointers**: Events reference users by ID (OrganizerID, VolunteersIDs)
//  2. **UTC on the wire**: DateTime is always normalized to UTC; conversion to a
//     display timezone happens once, in the resolver
//  3. **Full records**: Updates replace the whole event, never a partial patch
package models
