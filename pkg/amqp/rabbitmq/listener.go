package rabbitmq

import (
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

// Listener consumes one queue with automatic acknowledgement.
type Listener struct {
	*queueConn
}

func NewListener(addr, queue string) (*Listener, error) {
	qc, err := dial(addr, queue)
	if err != nil {
		return nil, err
	}

	return &Listener{queueConn: qc}, nil
}

func (r *Listener) Listen() (<-chan amqp.Delivery, error) {
	msgs, err := r.ch.Consume(
		r.queue, // queue
		"",      // consumer
		true,    // auto-ack
		false,   // exclusive
		false,   // no-local
		false,   // no-wait
		nil,     // args
	)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to consume %s", r.queue)
	}

	return msgs, nil
}
