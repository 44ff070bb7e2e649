/*
Package keeper implements the zklr settlement engine state machine.

Traders stake collateral, submit a proof together with a commitment to an
order, and later reveal the order. Accepted proofs pay a fee out of stake
and open a validity window; verified traders are scored for bandwidth by
stake, decay since the last proof, submission latency and trade volume.
Invalid submissions add strikes and repeated strikes slash stake to the
fee collector. Liquidity providers deposit into a separate vault, with a
bonus for the priority pool.

Every operation runs on a cached branch of the store and is written back
only on success. The one exception is the strike and slash applied for a
rejected proof or reveal, which is committed before the error is returned.
*/
package keeper
