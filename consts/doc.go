// Package consts defines application-wide constants: context keys, character sets used by
// id and join code generation, and document store collection and field names.
//
//	docs, err := store.Query(ctx, consts.MessagesCollection,
//	    data.Eq(consts.FieldSenderID, uid), data.MaxBatchSize)
package consts
