package common

import (
	"bytes"
	"encoding/gob"
	"os"
	"sync"

	"github.com/streadway/amqp"
)

const ExchangeName = "variate_batches"

func declareExchange(ch *amqp.Channel) error {
	return ch.ExchangeDeclare(
		ExchangeName, // name
		"fanout",     // type
		true,         // durable
		false,        // auto-deleted
		false,        // internal
		false,        // no-wait
		nil,          // arguments
	)
}

type AMQPPublisher struct {
	amqpConn *amqp.Connection
	amqpChan *amqp.Channel
}

func NewAMQPPublisher() (*AMQPPublisher, error) {
	var err error
	publisher := AMQPPublisher{}

	if publisher.amqpConn, err = amqp.Dial(os.Getenv("AMQP_URL")); err != nil {
		return nil, err
	}

	if publisher.amqpChan, err = publisher.amqpConn.Channel(); err != nil {
		_ = publisher.amqpConn.Close()
		return nil, err
	}

	if err = declareExchange(publisher.amqpChan); err != nil {
		_ = publisher.amqpChan.Close()
		_ = publisher.amqpConn.Close()
		return nil, err
	}

	return &publisher, nil
}

func (p *AMQPPublisher) Publish(batch AMQPBatch) error {
	buffer := bytes.Buffer{}
	if err := gob.NewEncoder(&buffer).Encode(batch); err != nil {
		return err
	}

	return p.amqpChan.Publish(
		ExchangeName, // exchange
		"",           // routing key
		false,        // mandatory
		false,        // immediate
		amqp.Publishing{
			ContentType: "application/octet-stream",
			Body:        buffer.Bytes(),
		},
	)
}

func (p *AMQPPublisher) Close() error {
	if err := p.amqpChan.Close(); err != nil {
		return err
	}
	return p.amqpConn.Close()
}

type AMQPConsumer struct {
	amqpConn  *amqp.Connection
	amqpChan  *amqp.Channel
	amqpQueue amqp.Queue

	queueName    string
	consumerName string

	amqpConsumer <-chan amqp.Delivery
	callback     func(amqp.Delivery) error
	wg           sync.WaitGroup
}

func NewAMQPConsumer(queueName, consumerName string, callback func(amqp.Delivery) error) (*AMQPConsumer, error) {
	var err error
	consumer := AMQPConsumer{
		callback: callback,

		queueName:    queueName,
		consumerName: consumerName,
	}

	if consumer.amqpConn, err = amqp.Dial(os.Getenv("AMQP_URL")); err != nil {
		return nil, err
	}

	if consumer.amqpChan, err = consumer.amqpConn.Channel(); err != nil {
		_ = consumer.amqpConn.Close()
		return nil, err
	}

	if err = declareExchange(consumer.amqpChan); err != nil {
		_ = consumer.amqpChan.Close()
		_ = consumer.amqpConn.Close()
		return nil, err
	}

	if consumer.amqpQueue, err = consumer.amqpChan.QueueDeclare(
		queueName, // name
		false,     // durable
		false,     // delete when unused
		true,      // exclusive
		false,     // no-wait
		nil,       // arguments
	); err != nil {
		_ = consumer.amqpChan.Close()
		_ = consumer.amqpConn.Close()
		return nil, err
	}

	if err = consumer.amqpChan.QueueBind(
		consumer.amqpQueue.Name, // queue name
		"",                      // routing key
		ExchangeName,            // exchange
		false,
		nil,
	); err != nil {
		_ = consumer.amqpChan.Close()
		_ = consumer.amqpConn.Close()
		return nil, err
	}

	return &consumer, nil
}

func (c *AMQPConsumer) Start() error {
	var err error

	if c.amqpConsumer, err = c.amqpChan.Consume(
		c.amqpQueue.Name, // queue
		c.consumerName,   // consumer
		true,             // auto-ack
		false,            // exclusive
		false,            // no-local
		false,            // no-wait
		nil,              // args
	); err != nil {
		return err
	}

	c.wg.Add(1)

	go func() {
		defer c.wg.Done()

		for {
			delivery, open := <-c.amqpConsumer
			if !open {
				break
			}

			_ = c.callback(delivery)
		}
	}()

	return nil
}

func (c *AMQPConsumer) Stop() error {
	return c.amqpChan.Cancel(c.consumerName, false)
}

func (c *AMQPConsumer) Wait() {
	c.wg.Wait()
}

func (c *AMQPConsumer) Close() error {
	if err := c.amqpChan.Close(); err != nil {
		return err
	}
	return c.amqpConn.Close()
}

func ParseAMQPBatch(delivery *amqp.Delivery) (AMQPBatch, error) {
	var batch AMQPBatch

	decoder := gob.NewDecoder(bytes.NewBuffer(delivery.Body))
	if err := decoder.Decode(&batch); err != nil {
		return batch, err
	}

	return batch, nil
}
