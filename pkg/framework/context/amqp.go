package context

import (
	"github.com/scoir/canis-revreg/pkg/amqp"
	"github.com/scoir/canis-revreg/pkg/amqp/rabbitmq"
)

func (r *Provider) AMQPListener(queue string) (amqp.Listener, error) {
	l, err := rabbitmq.NewListener(r.conf.AMQPAddress(), queue)
	if err != nil {
		return nil, err
	}

	return l, nil
}

// AMQPPublisher returns one publisher per queue for the life of the provider.
func (r *Provider) AMQPPublisher(queue string) (amqp.Publisher, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if pub, ok := r.publishers[queue]; ok {
		return pub, nil
	}

	pub, err := rabbitmq.NewPublisher(r.conf.AMQPAddress(), queue)
	if err != nil {
		return nil, err
	}

	r.publishers[queue] = pub
	return pub, nil
}
