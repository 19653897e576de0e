package rabbitmq

import (
	"github.com/pkg/errors"
	"github.com/streadway/amqp"
)

// queueConn is one connection and channel bound to a declared queue.
type queueConn struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	queue string
}

// dial connects to addr and declares queue durable, so deltas announced
// while no watcher is running are kept for the next one.
func dial(addr, queue string) (*queueConn, error) {
	conn, err := amqp.Dial(addr)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to dial AMQP at %s", addr)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrap(err, "unable to create an AMQP channel")
	}

	_, err = ch.QueueDeclare(
		queue, // name
		true,  // durable
		false, // delete when unused
		false, // exclusive
		false, // no-wait
		nil,   // arguments
	)
	if err != nil {
		_ = conn.Close()
		return nil, errors.Wrapf(err, "unable to declare AMQP queue %s", queue)
	}

	return &queueConn{conn: conn, ch: ch, queue: queue}, nil
}

func (r *queueConn) Close() error {
	_ = r.ch.Close()
	return r.conn.Close()
}
