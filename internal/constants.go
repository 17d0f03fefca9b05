/* Copyright © 2025-2026 Mike Brown. All Rights Reserved.
 *
 * See LICENSE file at the root of this repository for license terms
 */
package internal

const (
	UserAgent          = "clubtd/0.3.0 (+https://github.com/mikeb26/clubtd)"
	BccUSCFAffiliateID = "A5000408"
	WebCacheBucket     = "bopmatic-clubtd-prod-webcache"
	WebCachePrefix     = "webcache"
)
