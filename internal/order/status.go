package order

// DeriveStatus computes the aggregate order status from the full set of
// line statuses. Precedence, evaluated in order:
//
//  1. all lines Delivered            -> Delivered
//  2. all lines Shipped or Delivered -> Shipped
//  3. any line Cancelled             -> Cancelled
//  4. otherwise                      -> Processing
//
// The aggregate is always recomputed from the lines; it is never set
// directly by a line-status update.
func DeriveStatus(lines []Line) Status {
	if len(lines) == 0 {
		return StatusProcessing
	}

	allDelivered := true
	allShipped := true
	anyCancelled := false

	for i := range lines {
		switch lines[i].Status {
		case StatusDelivered:
		case StatusShipped:
			allDelivered = false
		case StatusCancelled:
			allDelivered = false
			allShipped = false
			anyCancelled = true
		default:
			allDelivered = false
			allShipped = false
		}
	}

	switch {
	case allDelivered:
		return StatusDelivered
	case allShipped:
		return StatusShipped
	case anyCancelled:
		return StatusCancelled
	default:
		return StatusProcessing
	}
}
