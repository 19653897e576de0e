package rabbitmq

import (
	"time"

	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

// Publisher sends persistent messages to one queue through the default exchange.
type Publisher struct {
	*queueConn
}

func NewPublisher(addr, queue string) (*Publisher, error) {
	qc, err := dial(addr, queue)
	if err != nil {
		return nil, err
	}

	return &Publisher{queueConn: qc}, nil
}

func (r *Publisher) Publish(body []byte, contentType string) error {
	err := r.ch.Publish(
		"",      // exchange
		r.queue, // routing key
		false,   // mandatory
		false,   // immediate
		amqp.Publishing{
			ContentType:  contentType,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now(),
			Body:         body,
		})

	return errors.Wrapf(err, "publish to %s failed", r.queue)
}
